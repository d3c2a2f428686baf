// ris - RIS codec CLI tool
//
// Usage:
//
//	ris encode [--yaml] [--extended] [file]   Serialize a JSON/YAML document
//	ris decode [--yaml] [--extended] [file]   Deserialize a RIS payload
//	ris inspect [file]                        Dump the constant table and edges
//
// If no file is given, reads from stdin.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/spencertipping/rather-insane-serialization/ris"
)

const version = "1.0.0"

var log = logging.MustGetLogger("ris")

var stderrFormat = logging.MustStringFormatter(
	`%{color}%{level:.4s}%{color:reset} %{message}`,
)

func setupLogging() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetFormatter(stderrFormat)
	leveled := logging.AddModuleLevel(backend)
	switch os.Getenv("RIS_LOG_LEVEL") {
	case "DEBUG":
		leveled.SetLevel(logging.DEBUG, "")
	case "INFO":
		leveled.SetLevel(logging.INFO, "")
	default:
		leveled.SetLevel(logging.WARNING, "")
	}
	logging.SetBackend(leveled)
}

func printFatal(msg string, args ...interface{}) {
	os.Stderr.WriteString("ris: " + fmt.Sprintf(msg, args...) + "\n")
	os.Exit(1)
}

func readInput(c *cli.Context) []byte {
	var in io.Reader = os.Stdin
	if file := c.Args().First(); file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			printFatal("open file: %v", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		printFatal("read input: %v", err)
	}
	return data
}

func bridgeOpts(c *cli.Context) ris.BridgeOpts {
	return ris.BridgeOpts{Extended: c.Bool("extended")}
}

func encodeCommand(c *cli.Context) error {
	data := readInput(c)

	var v *ris.Value
	var err error
	if c.Bool("yaml") {
		v, err = ris.FromYAMLWithOpts(data, bridgeOpts(c))
	} else {
		v, err = ris.FromJSONWithOpts(data, bridgeOpts(c))
	}
	if err != nil {
		printFatal("parse document: %v", err)
	}

	out, err := ris.Encode(v)
	if err != nil {
		printFatal("encode: %v", err)
	}
	log.Debugf("encoded %d document bytes into %d payload bytes", len(data), len(out))
	fmt.Println(out)
	return nil
}

func decodeCommand(c *cli.Context) error {
	data := readInput(c)

	v, err := ris.Decode(string(data))
	if err != nil {
		printFatal("decode: %v", err)
	}

	if c.Bool("yaml") {
		out, err := ris.ToYAMLWithOpts(v, bridgeOpts(c))
		if err != nil {
			printFatal("convert to YAML: %v", err)
		}
		fmt.Print(string(out))
		return nil
	}

	out, err := ris.ToJSONWithOpts(v, bridgeOpts(c))
	if err != nil {
		printFatal("convert to JSON: %v", err)
	}
	var pretty interface{}
	json.Unmarshal(out, &pretty)
	indented, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(indented))
	return nil
}

func inspectCommand(c *cli.Context) error {
	data := readInput(c)

	ins, err := ris.Inspect(string(data))
	if err != nil {
		printFatal("inspect: %v", err)
	}

	header := color.New(color.FgCyan, color.Bold)
	index := color.New(color.FgYellow)
	kind := color.New(color.FgGreen)

	header.Printf("constants: %d (9 sentinels + %d)  root: %d  edge width: %d\n",
		ins.ConstantCount, ins.ConstantCount-9, ins.RootIndex, ins.Width)
	for _, ci := range ins.Constants {
		index.Printf("%5d ", ci.Index)
		kind.Printf("%-7s ", ci.Kind)
		fmt.Printf("%-24s %q\n", ci.Summary, ci.Token)
	}
	header.Printf("edge groups: %d\n", len(ins.Groups))
	for _, g := range ins.Groups {
		index.Printf("%5d ", g.Parent)
		fmt.Printf("%d edges:", len(g.Edges))
		for _, e := range g.Edges {
			fmt.Printf(" %d→%d", e.Slot, e.Value)
		}
		fmt.Println()
	}
	return nil
}

func main() {
	setupLogging()
	app := cli.NewApp()
	app.Name = "ris"
	app.Usage = "encode and decode RIS object-graph payloads"
	app.Version = version
	app.Commands = []cli.Command{
		cli.Command{
			Name:    "encode",
			Aliases: []string{"e"},
			Usage:   "serialize a JSON (or YAML) document to RIS text",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "yaml", Usage: "read YAML instead of JSON"},
				cli.BoolFlag{Name: "extended", Usage: "honor $ris extension markers"},
			},
			Action: encodeCommand,
		},
		cli.Command{
			Name:    "decode",
			Aliases: []string{"d"},
			Usage:   "deserialize RIS text to a JSON (or YAML) document",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "yaml", Usage: "emit YAML instead of JSON"},
				cli.BoolFlag{Name: "extended", Usage: "emit $ris extension markers"},
			},
			Action: decodeCommand,
		},
		cli.Command{
			Name:   "inspect",
			Usage:  "dump the constant table and reference graph of a payload",
			Action: inspectCommand,
		},
	}
	app.Run(os.Args)
}

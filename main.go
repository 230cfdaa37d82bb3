package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/acctsyn/idl"
	"github.com/pontaoski/acctsyn/reader"
	"github.com/pontaoski/acctsyn/syn"
	"github.com/pontaoski/acctsyn/watch"
)

func check(m acctsynModule) error {
	structs, err := parseSources(m.Sources)
	if err != nil {
		return err
	}
	for _, st := range structs {
		fmt.Printf("%s: %d accounts ok\n", st.Ident.Name, len(st.Fields))
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "acctsyn",
		Usage: "accounts struct checker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "module",
				Value: moduleFile,
				Usage: "path to the module file",
			},
		},
		ExitErrHandler: func(context *cli.Context, err error) {
			if err == nil {
				return
			}
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write a module file",
				ArgsUsage: "<package>",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return tracerr.New("no package name provided")
					}
					return writeModule(c.String("module"), acctsynModule{
						Package: name,
						Sources: []string{"."},
						Output:  name + ".json",
					})
				},
			},
			{
				Name:  "check",
				Usage: "parse every accounts struct of the module",
				Action: func(c *cli.Context) error {
					m, err := loadModule(c.String("module"))
					if err != nil {
						return err
					}
					return check(m)
				},
			},
			{
				Name:      "dump",
				Usage:     "print the parsed accounts structs",
				ArgsUsage: "[file.go...]",
				Action: func(c *cli.Context) error {
					var structs []*syn.AccountsStruct
					var err error
					if c.NArg() > 0 {
						structs, err = parseFiles(c.Args().Slice())
					} else {
						var m acctsynModule
						if m, err = loadModule(c.String("module")); err != nil {
							return err
						}
						structs, err = parseSources(m.Sources)
					}
					if err != nil {
						return err
					}
					for _, st := range structs {
						repr.Println(dumpStruct(st))
					}
					return nil
				},
			},
			{
				Name:  "idl",
				Usage: "write the interface description of the module",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "IDL path, defaults to the module output",
					},
					&cli.StringFlag{
						Name:  "llvm",
						Usage: "also write an LLVM module embedding the IDL",
					},
				},
				Action: func(c *cli.Context) error {
					m, err := loadModule(c.String("module"))
					if err != nil {
						return err
					}
					out := c.String("output")
					if out == "" {
						out = m.Output
					}

					data, err := buildIDL(m)
					if err != nil {
						return err
					}
					if err := writeOutput(out, data); err != nil {
						return err
					}
					log.Printf("wrote %s", out)

					if ll := c.String("llvm"); ll != "" {
						if err := writeOutput(ll, []byte(idl.EmitLLVM(data).String())); err != nil {
							return err
						}
						log.Printf("wrote %s", ll)
					}
					return nil
				},
			},
			{
				Name:      "inspect",
				Usage:     "print the IDL embedded in a compiled program",
				ArgsUsage: "<library>",
				Action: func(c *cli.Context) error {
					lib := c.Args().First()
					if lib == "" {
						return tracerr.New("no library provided")
					}
					data, err := reader.ReadIDL(lib)
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					return nil
				},
			},
			{
				Name:  "watch",
				Usage: "check the module whenever its sources change",
				Action: func(c *cli.Context) error {
					m, err := loadModule(c.String("module"))
					if err != nil {
						return err
					}
					if err := check(m); err != nil {
						tracerr.PrintSourceColor(err)
					}

					ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
					defer stop()

					log.Printf("watching %v", m.Sources)
					return watch.Watch(ctx, m.Sources, func() error {
						return check(m)
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

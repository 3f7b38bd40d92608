// Command pathkit parses paths and applies the path operators from the
// command line.
//
//	pathkit parse 'c:\temp\file.tar.gz'
//	pathkit fuse /temp/destination.txt ../backups/
//	pathkit --platform windows rel 'c:\a\b\c' 'c:\a'
package main

import (
	"fmt"
	"os"

	"github.com/gobeaver/pathkit"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func parserFor(c *cli.Context) ([]pathkit.ParseOption, error) {
	platform, err := pathkit.ParsePlatform(c.GlobalString("platform"))
	if err != nil {
		return nil, err
	}
	opts := []pathkit.ParseOption{pathkit.WithPlatform(platform)}
	if sep := c.GlobalString("separator"); sep != "" {
		if len(sep) != 1 {
			return nil, fmt.Errorf("separator must be a single character, got %q", sep)
		}
		opts = append(opts, pathkit.WithSeparator(sep[0]))
	}
	if c.GlobalBool("keep-trailing-dots") {
		opts = append(opts, pathkit.KeepTrailingDots())
	}
	return opts, nil
}

func parseArgs(c *cli.Context, n int) ([]pathkit.Path, error) {
	if c.NArg() < n {
		return nil, fmt.Errorf("%s: expected %d path arguments, got %d", c.Command.Name, n, c.NArg())
	}
	opts, err := parserFor(c)
	if err != nil {
		return nil, err
	}
	paths := make([]pathkit.Path, 0, c.NArg())
	for _, arg := range c.Args() {
		p, err := pathkit.Parse(arg, opts...)
		if err != nil {
			return nil, err
		}
		logrus.WithField("path", p.String()).Debug("parsed argument")
		paths = append(paths, p)
	}
	return paths, nil
}

// binary runs op on the first two path arguments and prints the result.
func binary(op func(a, b pathkit.Path) (pathkit.Path, error)) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		paths, err := parseArgs(c, 2)
		if err != nil {
			return err
		}
		result, err := op(paths[0], paths[1])
		if err != nil {
			return err
		}
		fmt.Println(result.Native())
		return nil
	}
}

func printComponents(p pathkit.Path) {
	rows := []struct{ name, value string }{
		{"path", p.String()},
		{"native", p.Native()},
		{"volume", p.Volume()},
		{"protocol", p.Protocol()},
		{"host", p.Host()},
		{"site", p.Site()},
		{"dirs", p.Dirs()},
		{"filename", p.Filename()},
		{"base", p.Base()},
		{"ext", p.Ext()},
		{"query", p.Query()},
		{"fragment", p.Fragment()},
	}
	for _, row := range rows {
		fmt.Printf("%-9s %s\n", row.name+":", row.value)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "pathkit"
	app.Usage = "parse paths and apply path operators"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "platform", Value: "native", Usage: "path rules to apply: native, posix or windows"},
		cli.StringFlag{Name: "separator", Usage: "extra input separator accepted besides '/'"},
		cli.BoolFlag{Name: "keep-trailing-dots", Usage: "do not strip trailing dots from the last name"},
		cli.BoolFlag{Name: "verbose", Usage: "log debug output"},
	}
	app.Before = func(c *cli.Context) error {
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if c.GlobalBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		pathkit.SetLogger(logrus.StandardLogger())
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "parse",
			Usage: "print the components of each path",
			Action: func(c *cli.Context) error {
				paths, err := parseArgs(c, 1)
				if err != nil {
					return err
				}
				for i, p := range paths {
					if i > 0 {
						fmt.Println()
					}
					printComponents(p)
				}
				return nil
			},
		},
		{
			Name:   "join",
			Usage:  "concatenate two paths with one separator",
			Action: binary(pathkit.Path.Join),
		},
		{
			Name:   "fuse",
			Usage:  "apply the second path to the first like cd, stacking names and extensions",
			Action: binary(pathkit.Path.Fuse),
		},
		{
			Name:   "subtract",
			Usage:  "remove the second path from the front of the first",
			Action: binary(pathkit.Path.Subtract),
		},
		{
			Name:   "rel",
			Usage:  "print the first path relative to the second",
			Action: binary(pathkit.Path.RelTo),
		},
		{
			Name:  "ascend",
			Usage: "print the path and each of its ancestors",
			Action: func(c *cli.Context) error {
				paths, err := parseArgs(c, 1)
				if err != nil {
					return err
				}
				for p := range paths[0].Ascend() {
					fmt.Println(p.Native())
				}
				return nil
			},
		},
		{
			Name:  "descend",
			Usage: "print each ancestor of the path from the root down",
			Action: func(c *cli.Context) error {
				paths, err := parseArgs(c, 1)
				if err != nil {
					return err
				}
				for p := range paths[0].Descend() {
					fmt.Println(p.Native())
				}
				return nil
			},
		},
		{
			Name:  "common",
			Usage: "print the longest common directory of the paths",
			Action: func(c *cli.Context) error {
				paths, err := parseArgs(c, 1)
				if err != nil {
					return err
				}
				common, err := pathkit.CommonPath(paths...)
				if err != nil {
					return err
				}
				fmt.Println(common.Native())
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

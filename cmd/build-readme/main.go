package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"text/template"

	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/plugins"
	"github.com/keshon/dispatchbot/internal/registry"

	"github.com/rs/zerolog"
)

type CmdInfo struct {
	Name        string
	Description string
	Cooldown    string
	Options     []string
}

func main() {
	set, err := plugin.NewLoader(zerolog.Nop()).Load(plugins.Catalog(plugins.Deps{Log: zerolog.Nop()}))
	if err != nil {
		log.Fatal(err)
	}
	reg := registry.New()
	if err := reg.RegisterAll(set.Commands); err != nil {
		log.Fatal(err)
	}

	var cmds []CmdInfo
	for _, c := range reg.All() {
		info := CmdInfo{
			Name:        "/" + c.Name,
			Description: c.Description,
			Cooldown:    c.Cooldown.String(),
		}
		for _, o := range c.Options {
			info.Options = append(info.Options, o.Name)
		}
		cmds = append(cmds, info)
	}

	var buf bytes.Buffer
	for _, c := range cmds {
		fmt.Fprintf(&buf, "* **`%s`** (cooldown %s)\n  %s\n", c.Name, c.Cooldown, c.Description)
		for _, o := range c.Options {
			fmt.Fprintf(&buf, "  * `%s`\n", o)
		}
		buf.WriteString("\n")
	}

	tmplData, err := os.ReadFile("README.md.tmpl")
	if err != nil {
		log.Fatal(err)
	}
	tmpl, err := template.New("readme").Parse(string(tmplData))
	if err != nil {
		log.Fatal(err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, map[string]any{"CommandSections": buf.String()}); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("README.md", out.Bytes(), 0644); err != nil {
		log.Fatal(err)
	}
}

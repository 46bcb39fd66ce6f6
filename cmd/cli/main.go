// Command cli inspects the bot offline: it loads the plugin catalog (with an optional
// manifest) exactly as the bot would and prints the resulting commands, or prints a
// guild's recorded command history.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/keshon/dispatchbot/internal/plugin"
	"github.com/keshon/dispatchbot/internal/plugins"
	"github.com/keshon/dispatchbot/internal/registry"
	"github.com/keshon/dispatchbot/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	manifest := flag.String("manifest", os.Getenv("PLUGIN_MANIFEST"), "plugin manifest to apply")
	history := flag.String("history", "", "print the command history of this guild instead")
	storagePath := flag.String("storage", "datastore.json", "datastore file for -history")
	flag.Parse()

	var err error
	if *history != "" {
		err = printHistory(os.Stdout, *storagePath, *history)
	} else {
		err = printCommands(os.Stdout, *manifest)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printCommands(w io.Writer, manifestPath string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	var src plugin.Source = plugins.Catalog(plugins.Deps{Log: log})
	if manifestPath != "" {
		m, err := plugin.LoadManifest(manifestPath)
		if err != nil {
			return err
		}
		src = plugin.ManifestSource{Base: src, Manifest: m}
	}

	set, err := plugin.NewLoader(log).Load(src)
	if err != nil {
		return err
	}
	reg := registry.New()
	if err := reg.RegisterAll(set.Commands); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMAND\tCOOLDOWN\tOPTIONS\tDESCRIPTION")
	for _, c := range reg.All() {
		fmt.Fprintf(tw, "/%s\t%s\t%d\t%s\n", c.Name, c.Cooldown, len(c.Options), c.Description)
	}
	for _, e := range set.Events {
		m := e.Metadata()
		fmt.Fprintf(tw, "@%s\t-\t-\tonce=%t\n", m.Event, m.Once)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, path, guildID string) error {
	st, err := storage.New(path)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.FetchCommandHistory(guildID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tCHANNEL\tCOMMAND\tFAILED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t/%s\t%t\n", r.Datetime.Format(time.DateTime), r.Username, r.ChannelID, r.Command, r.Failed)
	}
	return tw.Flush()
}

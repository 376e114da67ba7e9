// Command twl builds, merges, and reconciles Translation Word List
// tables from the command line, and can serve the editing UI's local
// API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/pipeline"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/reconcile"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/table"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/api"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/archive"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/formats/usfm"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/formats/usx"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/logging"
	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/internal/markers"
)

const version = "0.2.0"

// CLI defines the command-line interface for twl.
var CLI struct {
	// Global flags
	Debug bool `help:"Enable debug logging"`
	JSON  bool `name:"json-logs" help:"Emit logs as JSON"`

	Merge     MergeCmd     `cmd:"" help:"Merge a generated TWL with an existing one and reconcile verse order"`
	Reconcile ReconcileCmd `cmd:"" help:"Deduplicate and verse-order a TWL without merging"`
	Validate  ValidateCmd  `cmd:"" help:"Validate a TWL file against the recognized schemas"`
	Extract   ExtractCmd   `cmd:"" help:"Extract verse text from a USFM or USX document"`
	Export    ExportCmd    `cmd:"" help:"Bundle TWL files into a reproducible .tar.xz archive"`
	Markers   MarkersCmd   `cmd:"" help:"Inspect or edit the per-user marker store"`
	Serve     ServeCmd     `cmd:"" help:"Start the local API server for the editing UI"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// MergeCmd runs the full pipeline: merge, dedup, verse-order, serialize.
type MergeCmd struct {
	Generated string `arg:"" help:"Freshly generated TWL file" type:"existingfile"`
	Existing  string `help:"Existing TWL file to merge against" type:"existingfile"`
	USFM      string `help:"USFM document for verse ordering" type:"existingfile"`
	USX       string `help:"USX document for verse ordering" type:"existingfile"`
	Strategy  string `help:"Merge strategy: keyed or interleave" enum:"keyed,interleave" default:"keyed"`
	FillIDs   bool   `help:"Assign deterministic IDs to rows that lack one"`
	Output    string `short:"o" help:"Output file (default stdout)" type:"path"`
	Book      string `help:"Book slug used for logging and marker lookup"`
	User      string `help:"Apply this user's stored markers to the result"`
	Markers   string `name:"markers-db" help:"Marker store path" default:"twl-markers.db" type:"path"`
}

func (c *MergeCmd) Run() error {
	generated, err := os.ReadFile(c.Generated)
	if err != nil {
		return err
	}

	var existing []byte
	if c.Existing != "" {
		if existing, err = os.ReadFile(c.Existing); err != nil {
			return err
		}
	}

	verses, err := loadVerseText(c.USFM, c.USX)
	if err != nil {
		return err
	}
	if verses == nil {
		logging.Warn("no verse text supplied, reconciling in dedupe-only mode")
	}

	result, err := pipeline.Run(pipeline.Input{
		Generated: string(generated),
		Existing:  string(existing),
		Verses:    verses,
		Strategy:  pipeline.Strategy(c.Strategy),
		FillIDs:   c.FillIDs,
	})
	if err != nil {
		return err
	}

	if c.User != "" {
		store, err := markers.Open(c.Markers)
		if err != nil {
			return err
		}
		defer store.Close()
		ms, err := store.List(context.Background(), c.User, c.Book)
		if err != nil {
			return err
		}
		result = markers.Apply(result, ms)
	}

	logging.PipelineStage("merge", c.Book, len(result.Rows), "strategy", c.Strategy)
	return writeOutput(c.Output, table.Serialize(result))
}

// ReconcileCmd runs only the dedup and verse-order passes over an
// already-merged table.
type ReconcileCmd struct {
	File   string `arg:"" help:"TWL file to reconcile" type:"existingfile"`
	USFM   string `help:"USFM document for verse ordering" type:"existingfile"`
	USX    string `help:"USX document for verse ordering" type:"existingfile"`
	Output string `short:"o" help:"Output file (default stdout)" type:"path"`
	Book   string `help:"Book slug used for logging"`
}

func (c *ReconcileCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	content := string(data)
	t, err := table.Parse(content, table.HasHeader(content))
	if err != nil {
		return err
	}
	if err := table.ValidateSchema(t); err != nil {
		return err
	}
	t = table.NormalizeColumnCount(t)

	verses, err := loadVerseText(c.USFM, c.USX)
	if err != nil {
		return err
	}
	if verses == nil {
		logging.Warn("no verse text supplied, reconciling in dedupe-only mode")
	}

	result := reconcile.Reconcile(t, verses)
	logging.PipelineStage("reconcile", c.Book, len(result.Rows))
	return writeOutput(c.Output, table.Serialize(result))
}

// ValidateCmd gates a pasted or saved TWL file the same way the merge
// input path does.
type ValidateCmd struct {
	File string `arg:"" help:"TWL file to validate" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	content := string(data)
	t, err := table.Parse(content, table.HasHeader(content))
	if err == nil {
		err = table.ValidateSchema(t)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c.File, err)
	}
	fmt.Printf("%s: valid (%d columns, %d rows)\n", c.File, len(t.Header), len(t.Rows))
	return nil
}

// ExtractCmd dumps the verse-text mapping as JSON, mostly for checking
// what the reconciler will see.
type ExtractCmd struct {
	USFM   string `help:"USFM document" type:"existingfile"`
	USX    string `help:"USX document" type:"existingfile"`
	Output string `short:"o" help:"Output file (default stdout)" type:"path"`
}

func (c *ExtractCmd) Run() error {
	verses, err := loadVerseText(c.USFM, c.USX)
	if err != nil {
		return err
	}
	if verses == nil {
		return fmt.Errorf("either --usfm or --usx is required")
	}
	data, err := json.MarshalIndent(verses, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(c.Output, string(data)+"\n")
}

// ExportCmd bundles files into a reproducible archive.
type ExportCmd struct {
	Files  []string `arg:"" help:"TWL and source files to bundle" type:"existingfile"`
	Output string   `short:"o" required:"" help:"Archive path (.tar.xz)" type:"path"`
}

func (c *ExportCmd) Run() error {
	bundle := make([]archive.File, 0, len(c.Files))
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		bundle = append(bundle, archive.File{Name: filepath.Base(path), Data: data})
	}
	if err := archive.WriteFile(c.Output, bundle); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d files)\n", c.Output, len(bundle))
	return nil
}

// MarkersCmd manages the marker store.
type MarkersCmd struct {
	List   MarkersListCmd   `cmd:"" help:"List a user's markers for a book"`
	Add    MarkersAddCmd    `cmd:"" help:"Record a marker"`
	Remove MarkersRemoveCmd `cmd:"" help:"Remove a marker"`

	DB string `name:"markers-db" help:"Marker store path" default:"twl-markers.db" type:"path"`
}

type markerArgs struct {
	User       string `required:"" help:"User name"`
	Book       string `required:"" help:"Book slug"`
	Kind       string `help:"Marker kind: deleted or unlinked" enum:"deleted,unlinked" default:"deleted"`
	Reference  string `required:"" help:"Row reference (chapter:verse)"`
	OrigWords  string `help:"Row OrigWords"`
	Occurrence string `help:"Row Occurrence" default:"1"`
	TWLink     string `help:"Row TWLink"`
}

func (a *markerArgs) marker() markers.Marker {
	return markers.Marker{
		User:       a.User,
		Book:       a.Book,
		Kind:       markers.Kind(a.Kind),
		Reference:  a.Reference,
		OrigWords:  a.OrigWords,
		Occurrence: a.Occurrence,
		TWLink:     a.TWLink,
	}
}

// MarkersListCmd lists markers.
type MarkersListCmd struct {
	User string `required:"" help:"User name"`
	Book string `required:"" help:"Book slug"`
}

func (c *MarkersListCmd) Run(parent *MarkersCmd) error {
	store, err := markers.Open(parent.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	ms, err := store.List(context.Background(), c.User, c.Book)
	if err != nil {
		return err
	}
	for _, m := range ms {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", m.Kind, m.Reference, m.OrigWords, m.Occurrence, m.TWLink)
	}
	return nil
}

// MarkersAddCmd records a marker.
type MarkersAddCmd struct {
	markerArgs
}

func (c *MarkersAddCmd) Run(parent *MarkersCmd) error {
	store, err := markers.Open(parent.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	id, err := store.Put(context.Background(), c.marker())
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

// MarkersRemoveCmd removes a marker.
type MarkersRemoveCmd struct {
	markerArgs
}

func (c *MarkersRemoveCmd) Run(parent *MarkersCmd) error {
	store, err := markers.Open(parent.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	m := c.marker()
	row := table.Row{
		Reference:  m.Reference,
		OrigWords:  m.OrigWords,
		Occurrence: m.Occurrence,
		TWLink:     m.TWLink,
	}
	return store.Remove(context.Background(), m.User, m.Book, m.Kind, row.Key())
}

// ServeCmd starts the local API server.
type ServeCmd struct {
	Port    int    `help:"Port to listen on" default:"8675"`
	Markers string `name:"markers-db" help:"Marker store path" default:"twl-markers.db" type:"path"`
}

func (c *ServeCmd) Run() error {
	srv, err := api.NewServer(api.Config{Port: c.Port, MarkersPath: c.Markers})
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.Start()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("twl version %s (sqlite driver: %s)\n", version, markers.DriverType())
	return nil
}

// loadVerseText reads at most one of the two source formats.
func loadVerseText(usfmPath, usxPath string) (reconcile.VerseText, error) {
	switch {
	case usfmPath != "" && usxPath != "":
		return nil, fmt.Errorf("--usfm and --usx are mutually exclusive")
	case usfmPath != "":
		data, err := os.ReadFile(usfmPath)
		if err != nil {
			return nil, err
		}
		return usfm.ExtractVerseText(data)
	case usxPath != "":
		data, err := os.ReadFile(usxPath)
		if err != nil {
			return nil, err
		}
		return usx.ExtractVerseText(data)
	}
	return nil, nil
}

// writeOutput writes to path, or stdout when path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("twl"),
		kong.Description("Translation Word List creation and reconciliation tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := logging.LevelInfo
	if CLI.Debug {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if CLI.JSON {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/lilypad-dao/lilypad/core/content"
)

func (cli *commandLine) filters(typ string, top int, asJSON bool) error {
	t, err := content.ParseType(typ)
	if err != nil {
		return err
	}
	filters, err := cli.contentSvc.Filters(context.Background(), t, top)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(filters)
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSLUG\tNAME\tCOUNT\tPATH")
	for _, f := range filters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t/browse/%s/%s\n", f.Kind, f.Slug, f.Name, f.Count, f.BrowseSegment(), f.Slug)
	}
	return w.Flush()
}

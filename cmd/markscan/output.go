package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"markscan/internal/types"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

func writeReport(w io.Writer, format string, report types.Report) error {
	if format == formatTable {
		return writeTable(w, report)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeTable(w io.Writer, report types.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODULE\tFILE\tIMPORT\tFORROOT\tROUTER START")
	for _, m := range report.Modules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ModuleName, m.FilePath,
			yesNo(m.ImportsMonitoringPackage), yesNo(m.HasRootRegistration), yesNo(m.HasRouterStart))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "COMPONENT\tFILE\tSTATUS\tTEMPLATE\tHTML FILE")
	for _, c := range report.Components {
		tpl := c.TemplateURL
		if c.InlineTemplatePresent {
			tpl = types.LabelTemplateProvided
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ComponentName, c.FilePath, c.Status, dash(tpl), dash(c.ResolvedHTMLFileName))
	}
	if len(report.Failures) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "FAILED FILE\tKIND\tERROR")
		for _, f := range report.Failures {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Path, f.Kind, f.Message)
		}
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "%d of %d components marked\n", report.MarkedCount(), len(report.Components))
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

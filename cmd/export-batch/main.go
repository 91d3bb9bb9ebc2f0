package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kopnusantara/koperasi_backend/config"
	"github.com/kopnusantara/koperasi_backend/exports"
	"github.com/kopnusantara/koperasi_backend/models"
	"github.com/kopnusantara/koperasi_backend/utils"
)

// export-batch runs a synchronous batch export from the command line:
// either an explicit report id list, a cooperative's whole book year, or a
// period-end date range. Prints the batch result as JSON.
func main() {
	reportIds := flag.String("report-ids", "", "Comma-separated report ids")
	cooperativeId := flag.Int("cooperative-id", 0, "Cooperative id (for -year or -from/-to)")
	year := flag.Int("year", 0, "Export every approved report of this book year")
	from := flag.String("from", "", "Period-end range start (YYYY-MM-DD)")
	to := flag.String("to", "", "Period-end range end (YYYY-MM-DD)")
	format := flag.String("format", "document", "Export format: document | spreadsheet")
	paperSize := flag.String("paper-size", "A4", "Document paper size")
	orientation := flag.String("orientation", "portrait", "Document orientation: portrait | landscape")
	comparison := flag.Bool("comparison", false, "Embed the prior-year comparison table")
	charts := flag.Bool("charts", false, "Embed the composition chart section")
	createZip := flag.Bool("zip", false, "Bundle the artifacts into a zip")
	actor := flag.String("actor", "", "Actor name recorded on audit events (defaults to System)")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	storage, err := utils.NewArtifactStorage()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init artifact storage:", err)
		os.Exit(1)
	}
	service := exports.NewService(storage)

	opts := exports.ExportOptions{
		Format:            exports.ExportFormat(*format),
		PaperSize:         *paperSize,
		Orientation:       *orientation,
		IncludeComparison: *comparison,
		IncludeCharts:     *charts,
		CreateZip:         *createZip,
	}
	ctx := context.Background()
	if *cooperativeId > 0 {
		// Scopes every report query through the cooperative guard.
		ctx = utils.SetCooperativeIdInContext(ctx, *cooperativeId)
	}
	if *actor != "" {
		ctx = utils.SetUserNameInContext(ctx, *actor)
	}
	ectx := exports.RequestExportContext(ctx)

	var result *exports.BatchResult
	switch {
	case strings.TrimSpace(*reportIds) != "":
		ids, err := parseIds(*reportIds)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		result, err = service.ExportBatch(ctx, ids, opts, ectx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export batch:", err)
			os.Exit(1)
		}
	case *year != 0:
		if *cooperativeId == 0 {
			fmt.Fprintln(os.Stderr, "-cooperative-id is required with -year")
			os.Exit(1)
		}
		result, err = service.ExportCooperativeYear(ctx, *cooperativeId, *year, opts, ectx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export cooperative year:", err)
			os.Exit(1)
		}
	case *from != "" && *to != "":
		if *cooperativeId == 0 {
			fmt.Fprintln(os.Stderr, "-cooperative-id is required with -from/-to")
			os.Exit(1)
		}
		fromDate, err := time.Parse("2006-01-02", *from)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -from date:", err)
			os.Exit(1)
		}
		toDate, err := time.Parse("2006-01-02", *to)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -to date:", err)
			os.Exit(1)
		}
		result, err = service.ExportByDateRange(ctx, *cooperativeId, fromDate, toDate, opts, ectx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export by date range:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "one of -report-ids, -year, or -from/-to is required")
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	if result.ErrorCount > 0 {
		os.Exit(2)
	}
}

func parseIds(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad report id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no report ids in %q", s)
	}
	return ids, nil
}

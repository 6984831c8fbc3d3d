package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"presence-chat/internal"
	"presence-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const timeLayout = "15:04:05"

// inspect dumps the chat store. The server must be stopped, or the store
// copied, since Badger holds a directory lock.
func main() {
	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	prefix := flag.String("prefix", "", "Key prefix to scan (participant:, msg:, msgid:)")
	serve := flag.String("serve", "", "Serve an HTML view on this address instead of printing")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "missing -db or BADGER_FILEPATH")
		os.Exit(2)
	}
	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithReadOnly(true).WithLogger(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening badger: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	source := func(prefix string) ([]internal.InspectRow, error) {
		records, err := repositories.Inspect(db, prefix)
		if err != nil {
			return nil, err
		}
		return lo.Map(records, func(r repositories.Record, _ int) internal.InspectRow { return toRow(r) }), nil
	}

	if *serve != "" {
		color.Green.Printf("Store inspector on http://%s/inspect\n", *serve)
		mux := http.NewServeMux()
		mux.Handle("/inspect", internal.NewInspectHandler(source))
		if err := http.ListenAndServe(*serve, mux); err != nil {
			color.Red.Println(err)
		}
		return
	}

	rows, err := source(*prefix)
	if err != nil {
		color.Red.Println(err)
		return
	}
	render(rows)
}

func toRow(r repositories.Record) internal.InspectRow {
	row := internal.InspectRow{Key: r.Key, Type: r.Type, Name: r.Name, To: r.To, Detail: r.Detail, At: "--:--:--"}
	if !r.At.IsZero() {
		row.At = r.At.Format(timeLayout)
	}
	return row
}

func render(rows []internal.InspectRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "At", "Name", "To", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, row := range rows {
		kind := row.Type
		if kind == "RAW" {
			kind = color.Red.Sprint(kind)
		}
		table.Append([]string{row.Key, kind, row.At, row.Name, row.To, row.Detail})
	}
	table.Render()
	color.Cyan.Printf("%d entries\n", len(rows))
}

// archive_inspect dumps the archived transcripts as a table, with an
// option to print one full transcript body.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"convosplit/archive"
)

func main() {
	dbPath := flag.String("db", "./data/archive", "Path to the badger archive")
	prefix := flag.String("prefix", archive.KeyPrefix, "Key prefix to scan")
	dump := flag.String("dump", "", "Key of a transcript to print in full")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening archive: ", err)
	}
	defer db.Close()

	if *dump != "" {
		if err := dumpTranscript(db, *dump); err != nil {
			log.Fatal(err)
		}
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Parent", "Channel", "Filename", "Archived At", "Size"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var record archive.Record
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				table.Append([]string{
					string(item.Key()),
					string(record.ParentID),
					string(record.TempChannelID),
					record.Filename,
					record.ArchivedAt.Format("2006-01-02 15:04:05"),
					strconv.Itoa(len(record.Content)) + " B",
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	color.Green.Printf("%d archived transcript(s) under %q\n\n", count, *prefix)
	table.Render()
}

func dumpTranscript(db *badger.DB, key string) error {
	record, err := archive.NewTranscriptArchive(db, slog.Default()).Get(key)
	if err != nil {
		return fmt.Errorf("transcript %q: %w", key, err)
	}
	color.Cyan.Println(record.Filename)
	fmt.Println(string(record.Content))
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

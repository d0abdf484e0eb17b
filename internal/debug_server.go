// Package internal hosts the operator-facing inspection server for the
// transcript archive.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key        string
	Parent     string
	Channel    string
	Filename   string
	ArchivedAt string
	Size       string
}

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes the archived transcripts over a small HTML
// page, read straight from the badger store.
func StartDebugServer(db *badger.DB, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "transcript:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// mapRow decodes one archived record into a display row. Records that
// fail to decode still show up with their raw key and size.
func mapRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:        key,
		Parent:     "--------",
		Channel:    "--------",
		Filename:   "-",
		ArchivedAt: "--:--:--",
		Size:       strconv.Itoa(len(val)) + " bytes",
	}

	var record struct {
		ParentID      string `json:"parent_id"`
		TempChannelID string `json:"temp_channel_id"`
		Filename      string `json:"filename"`
	}
	if err := json.Unmarshal(val, &record); err == nil {
		row.Parent = record.ParentID
		row.Channel = record.TempChannelID
		row.Filename = record.Filename
	}

	parts := strings.Split(key, ":")
	if len(parts) >= 4 {
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.ArchivedAt = time.Unix(0, tsNano).UTC().Format("2006-01-02 15:04:05")
		}
	}
	return row
}

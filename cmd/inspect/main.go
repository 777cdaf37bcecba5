// Command inspect dumps the slot and swap-record collections of a database
// directory as tables. Read-only; safe to run against a live server's copy.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Pk1316/slot-swapper-backend/domain"
)

func main() {
	dbPath := flag.String("db", "", "Path to badger DB")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing -db flag")
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if err := dumpSlots(db); err != nil {
		log.Fatal("Error dumping slots: ", err)
	}
	if err := dumpSwaps(db); err != nil {
		log.Fatal("Error dumping swap records: ", err)
	}
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
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
	return table
}

func dumpSlots(db *badger.DB) error {
	color.Bold.Println("Slots")
	table := newTable([]string{"ID", "Title", "Owner", "Status", "Start", "End", "Version"})

	err := scan(db, "slot:", func(val []byte) error {
		var slot domain.Slot
		if err := cbor.Unmarshal(val, &slot); err != nil {
			return err
		}
		table.Append([]string{
			shortID(slot.ID),
			slot.Title,
			shortID(slot.OwnerID),
			string(slot.Status),
			slot.StartTime.Format("2006-01-02 15:04"),
			slot.EndTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", slot.Version),
		})
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func dumpSwaps(db *badger.DB) error {
	color.Bold.Println("\nSwap requests")
	table := newTable([]string{"ID", "Requester", "Responder", "My slot", "Their slot", "Status", "Created"})

	err := scan(db, "swap:", func(val []byte) error {
		var record domain.SwapRequest
		if err := cbor.Unmarshal(val, &record); err != nil {
			return err
		}
		table.Append([]string{
			shortID(record.ID),
			shortID(record.RequesterID),
			shortID(record.ResponderID),
			shortID(record.MySlotID),
			shortID(record.TheirSlotID),
			string(record.Status),
			record.CreatedAt.Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func scan(db *badger.DB, prefix string, fn func(val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				// Log and continue instead of aborting the whole dump.
				fmt.Printf("Error decoding key %s: %v\n", string(it.Item().Key()), err)
			}
		}
		return nil
	})
}

// shortID keeps the first 8 characters of a UUID for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

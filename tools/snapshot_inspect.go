// Command snapshot_inspect dumps the persisted channel snapshot of a
// replica as a table. Read-only: safe to run while a replica holds the DB.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"rtchat/domain"
	"rtchat/internal"
	"rtchat/repositories"
)

func main() {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	colours := flag.Bool("colours", true, "Colorize public/private badges")
	flag.Parse()

	// BypassLockGuard allows opening while a replica holds the lock.
	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	snapshot := repositories.NewSnapshotRepository(db, logs.GetLoggerFromString(config.LogLevel)).Load()

	channels := make([]*domain.Channel, 0, len(snapshot))
	for _, channel := range snapshot {
		channels = append(channels, channel)
	}
	slices.SortFunc(channels, func(a, b *domain.Channel) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "ID", "Owner", "Visibility", "Members", "Messages"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, channel := range channels {
		table.Append([]string{
			channel.Name,
			channel.ID,
			string(channel.Owner),
			visibility(channel.Public, *colours),
			fmt.Sprintf("%d", len(channel.Members)),
			fmt.Sprintf("%d", len(channel.Messages)),
		})
	}

	fmt.Printf("Snapshot at %s: %d channel(s)\n\n", *dbPath, len(channels))
	table.Render()
}

func visibility(public bool, colours bool) string {
	switch {
	case public && colours:
		return color.Green.Render("public")
	case public:
		return "public"
	case colours:
		return color.Yellow.Render("private")
	default:
		return "private"
	}
}

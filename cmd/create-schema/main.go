package main

import (
	"context"
	"fmt"
	"log"

	"formreview-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS history (
    id SERIAL PRIMARY KEY,
    username TEXT NOT NULL,
    chat_name TEXT NOT NULL
);`

// sampleChats are the chats seeded for the fixed user
var sampleChats = []string{
	"General Chat",
	"Support Chat",
	"Dev Team Chat",
	"Marketing Chat",
	"Sales Chat",
	"Product Chat",
	"HR Chat",
	"Finance Chat",
	"Random Chat",
	"Design Chat",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	databaseURL := pflag.String("database-url", cfg.Database.URL, "Postgres connection string")
	drop := pflag.Bool("drop", false, "Drop the history table before creating it")
	seed := pflag.Bool("seed", false, "Insert sample chats for the history user")
	username := pflag.String("username", cfg.History.Username, "User the sample chats are seeded for")
	pflag.Parse()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if *drop {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS history"); err != nil {
			log.Fatalf("Failed to drop table: %v", err)
		}
		log.Println("✓ Dropped existing history table (if any)")
	}

	if _, err := pool.Exec(ctx, historySchema); err != nil {
		log.Fatalf("Failed to create history table: %v", err)
	}
	log.Println("✓ Created history table")

	if _, err := pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_history_username ON history(username)"); err != nil {
		log.Printf("Warning: Failed to create index on username: %v", err)
	} else {
		log.Println("✓ Created index: history username")
	}

	if *seed {
		for _, chat := range sampleChats {
			if _, err := pool.Exec(ctx, "INSERT INTO history (username, chat_name) VALUES ($1, $2)", *username, chat); err != nil {
				log.Fatalf("Failed to insert chat %q: %v", chat, err)
			}
		}
		log.Printf("✓ Seeded %d chats for %s", len(sampleChats), *username)
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Table: history")
}

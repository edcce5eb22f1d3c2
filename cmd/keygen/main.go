package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/celestia-labs/reportgen/internal/auth"
)

func main() {
	user := flag.String("user", "", "user ID (required)")
	name := flag.String("name", "", "human-friendly key name (required)")
	plan := flag.String("plan", "free", "plan: free, pro, enterprise")
	env := flag.String("env", "prod", "environment prefix")
	reportTypes := flag.String("report-types", "", "comma-separated allowed report types (empty = all)")
	rpm := flag.Int("rpm", 0, "requests per minute limit (0 = default)")
	dailyReports := flag.Int("daily-reports", 0, "daily report limit (0 = default)")
	expires := flag.String("expires", "365d", "expiry duration (e.g., 365d, 720h)")
	dbURL := flag.String("db-url", "", "database URL (overrides env)")
	flag.Parse()

	if *user == "" || *name == "" {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nerror: -user and -name are required")
		os.Exit(1)
	}

	// Generate key
	rawKey, err := auth.GenerateKey(*env)
	if err != nil {
		log.Fatalf("failed to generate key: %v", err)
	}

	keyHash := auth.HashKey(rawKey)
	keyPrefix := auth.KeyPrefix(rawKey)

	// Parse expiry
	dur, err := auth.ParseDuration(*expires)
	if err != nil {
		log.Fatalf("invalid expires: %v", err)
	}
	expiresAt := time.Now().Add(dur)

	// Connect to database
	dsn := *dbURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		u := envOrDefault("DB_USER", "reportgen")
		pass := envOrDefault("DB_PASSWORD", "reportgen-dev")
		dbname := envOrDefault("DB_NAME", "reportgen")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", u, pass, host, port, dbname)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	allowed := []string{}
	if *reportTypes != "" {
		for _, rt := range strings.Split(*reportTypes, ",") {
			allowed = append(allowed, strings.TrimSpace(rt))
		}
	}
	allowedJSON, _ := json.Marshal(allowed)

	// Insert key
	var keyID string
	err = conn.QueryRow(ctx, `
		INSERT INTO api_keys (key_hash, key_prefix, user_id, name, plan, allowed_report_types, rpm_limit, daily_report_limit, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, keyHash, keyPrefix, *user, *name, *plan, allowedJSON, nilIfZero(*rpm), nilIfZero(*dailyReports), expiresAt).Scan(&keyID)
	if err != nil {
		log.Fatalf("failed to insert key: %v", err)
	}

	fmt.Println("=== Report API Key Generated ===")
	fmt.Println()
	fmt.Printf("  Key ID:        %s\n", keyID)
	fmt.Printf("  Key Prefix:    %s\n", keyPrefix)
	fmt.Printf("  User:          %s\n", *user)
	fmt.Printf("  Plan:          %s\n", *plan)
	if len(allowed) > 0 {
		fmt.Printf("  Report Types:  %s\n", strings.Join(allowed, ", "))
	}
	fmt.Printf("  Expires:       %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("  API Key (save this — it will NOT be shown again):")
	fmt.Printf("  %s\n", rawKey)
	fmt.Println()
	fmt.Println("================================")
}

func nilIfZero(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

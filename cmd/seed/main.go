package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/bloodlink/bloodlink-api/config"
	"github.com/bloodlink/bloodlink-api/pkg/helpers"
)

// Seeds an admin, a volunteer, and a few donors for local development, and
// prints a bearer token for each so the API can be exercised immediately.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	verifier := helpers.NewTokenVerifier(cfg.IDPTokenSecret)

	seedUsers := []struct {
		email, name, group, district, upazila, role string
	}{
		{"admin@bloodlink.example", "Site Admin", "O+", "Dhaka", "Dhanmondi", "admin"},
		{"volunteer@bloodlink.example", "Vera Volunteer", "A+", "Dhaka", "Gulshan", "volunteer"},
		{"donor1@bloodlink.example", "Dana Donor", "O+", "Dhaka", "Dhanmondi", "donor"},
		{"donor2@bloodlink.example", "Deepak Donor", "B-", "Chattogram", "Pahartali", "donor"},
	}

	for _, u := range seedUsers {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (email, name, blood_group, district, upazila, role, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'active')
			ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role
			RETURNING id
		`, u.email, u.name, u.group, u.district, u.upazila, u.role).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}

		token, err := verifier.Mint(u.email, u.name, 24*time.Hour)
		if err != nil {
			log.Fatalf("failed to mint token for %s: %v", u.email, err)
		}
		fmt.Printf("seeded %-9s id=%s email=%s\n  token: %s\n", u.role, id, u.email, token)
	}

	// One pending request so the lifecycle can be walked right away.
	var reqID string
	err = db.QueryRow(`
		INSERT INTO donation_requests
			(requester_name, requester_email, recipient_name, district, upazila,
			 hospital_name, full_address, blood_group, donation_date, donation_time, message, status)
		VALUES ('Dana Donor', 'donor1@bloodlink.example', 'Rahim Uddin', 'Dhaka', 'Dhanmondi',
			 'Dhaka Medical College', '100 Secretariat Rd, Dhaka', 'O+', $1, '10:30', 'Urgent surgery', 'pending')
		RETURNING id
	`, time.Now().AddDate(0, 0, 7).Format("2006-01-02")).Scan(&reqID)
	if err != nil {
		log.Fatalf("failed to seed donation request: %v", err)
	}
	fmt.Printf("seeded pending donation request id=%s\n", reqID)
}

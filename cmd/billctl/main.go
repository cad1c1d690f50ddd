// Command billctl is an operator tool for inspecting and maintaining
// smartledger accounts and bills directly against the database.
//
// Usage:
//
//	billctl users list
//	billctl users get <user_id>
//	billctl users set-email <user_id> <email>
//	billctl users set-password <user_id> <password>
//	billctl users delete <user_id>
//	billctl bills list [user_id]
//	billctl bills get <bill_id>
//	billctl bills delete <bill_id>
//	billctl bills receipt <bill_id>
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"smartledger/internal/config"
	"smartledger/internal/port"
	"smartledger/internal/repository/postgres"
	"smartledger/internal/service"
	s3storage "smartledger/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	userRepo := postgres.NewUserRepo(db)
	billRepo := postgres.NewBillRepo(db)
	userSvc := service.NewUserService(userRepo, cfg.Auth)
	billSvc := service.NewBillService(billRepo, nil, nil, cfg.S3)

	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("initializing S3 client: %w", err)
		}
	}

	ctx := context.Background()
	group, cmd := os.Args[1], os.Args[2]
	args := os.Args[3:]

	switch group {
	case "users":
		return runUsers(ctx, userSvc, cmd, args)
	case "bills":
		return runBills(ctx, billSvc, storage, &cfg.S3, cmd, args)
	default:
		usage()
		os.Exit(1)
		return nil
	}
}

func runUsers(ctx context.Context, svc service.UserService, cmd string, args []string) error {
	switch cmd {
	case "list":
		users, err := svc.List(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%s\t%s\tcreated %s\n", u.UserID, u.Email, u.CreatedAt)
		}
		return nil

	case "get":
		if len(args) < 1 {
			return fmt.Errorf("users get requires a user_id")
		}
		u, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("user_id:    %s\n", u.UserID)
		fmt.Printf("email:      %s\n", u.Email)
		fmt.Printf("token set:  %v\n", u.Token != "")
		fmt.Printf("expires_at: %s\n", u.TokenExpiresAt)
		fmt.Printf("created_at: %s\n", u.CreatedAt)
		return nil

	case "set-email":
		if len(args) < 2 {
			return fmt.Errorf("users set-email requires user_id and email")
		}
		if err := svc.UpdateEmail(ctx, args[0], args[1]); err != nil {
			return err
		}
		log.Printf("email updated for %s", args[0])
		return nil

	case "set-password":
		if len(args) < 2 {
			return fmt.Errorf("users set-password requires user_id and password")
		}
		if err := svc.UpdatePassword(ctx, args[0], args[1]); err != nil {
			return err
		}
		log.Printf("password updated for %s", args[0])
		return nil

	case "delete":
		if len(args) < 1 {
			return fmt.Errorf("users delete requires a user_id")
		}
		if err := svc.Delete(ctx, args[0]); err != nil {
			return err
		}
		log.Printf("user %s deleted; their bills are kept", args[0])
		return nil

	default:
		usage()
		os.Exit(1)
		return nil
	}
}

func runBills(ctx context.Context, svc service.BillService, storage port.ObjectStorage, s3cfg *config.S3Config, cmd string, args []string) error {
	switch cmd {
	case "list":
		userID := ""
		if len(args) > 0 {
			userID = args[0]
		}
		bills, err := svc.List(ctx, userID)
		if err != nil {
			return err
		}
		for _, b := range bills {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
				b.BillID, b.UserID, b.Category, b.AmountString(), b.Date)
		}
		return nil

	case "get":
		if len(args) < 1 {
			return fmt.Errorf("bills get requires a bill_id")
		}
		b, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("bill_id:     %s\n", b.BillID)
		fmt.Printf("user_id:     %s\n", b.UserID)
		fmt.Printf("category:    %s\n", b.Category)
		fmt.Printf("amount:      %s\n", b.AmountString())
		fmt.Printf("date:        %s\n", b.Date)
		fmt.Printf("description: %s\n", b.Description)
		fmt.Printf("nw_type:     %s\n", b.NWType)
		return nil

	case "delete":
		if len(args) < 1 {
			return fmt.Errorf("bills delete requires a bill_id")
		}
		b, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		// Operator delete acts as the owner.
		if err := svc.Delete(ctx, b.UserID, b.BillID); err != nil {
			return err
		}
		if storage != nil {
			key := fmt.Sprintf("receipts/%s/%s", b.UserID, b.BillID)
			if err := storage.Delete(ctx, s3cfg.Bucket, key); err != nil {
				log.Printf("archived receipt not removed (%s): %v", key, err)
			}
		}
		log.Printf("bill %s deleted", b.BillID)
		return nil

	case "receipt":
		if len(args) < 1 {
			return fmt.Errorf("bills receipt requires a bill_id")
		}
		if storage == nil {
			return fmt.Errorf("receipt archival is not configured (no S3 bucket set)")
		}
		b, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}
		key := fmt.Sprintf("receipts/%s/%s", b.UserID, b.BillID)
		url, err := storage.GetPresignedURL(ctx, s3cfg.Bucket, key, s3cfg.PresignExpiry)
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil

	default:
		usage()
		os.Exit(1)
		return nil
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  billctl users list
  billctl users get <user_id>
  billctl users set-email <user_id> <email>
  billctl users set-password <user_id> <password>
  billctl users delete <user_id>
  billctl bills list [user_id]
  billctl bills get <bill_id>
  billctl bills delete <bill_id>
  billctl bills receipt <bill_id>`)
}

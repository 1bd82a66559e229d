package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vercart/storefront/internal/domain/identity"
	"github.com/vercart/storefront/internal/domain/product"
	"github.com/vercart/storefront/internal/repository"
)

// sessionTTL is how long a seeded development session stays valid.
const sessionTTL = 30 * 24 * time.Hour

type productJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
}

func main() {
	var (
		databaseURL   string
		productsFiles string
		sessionToken  string
		sessionPepper string
		userID        string
		userEmail     string
		userName      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFiles, "products-files", "db/seed/products.json", "comma-separated product JSON files (.gz supported)")
	flag.StringVar(&sessionToken, "session-token", "", "development session token to seed (or STORE_SEED_SESSION_TOKEN env)")
	flag.StringVar(&sessionPepper, "session-pepper", "", "HMAC pepper for session token hashing (or STORE_SESSION_PEPPER env)")
	flag.StringVar(&userID, "user-id", "dev-user", "user ID for the seeded session")
	flag.StringVar(&userEmail, "user-email", "dev@example.com", "email for the seeded session")
	flag.StringVar(&userName, "user-name", "Dev User", "display name for the seeded session")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if sessionToken == "" {
		sessionToken = os.Getenv("STORE_SEED_SESSION_TOKEN")
	}
	if sessionPepper == "" {
		sessionPepper = os.Getenv("STORE_SESSION_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	user := identity.Identity{ID: userID, Email: userEmail, Name: userName}
	files := strings.Split(productsFiles, ",")

	if err := run(ctx, databaseURL, files, sessionToken, sessionPepper, user); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string, token, pepper string, user identity.Identity) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products := repository.NewProductRepository(pool)
	if err := seedProducts(ctx, products, files); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if token != "" {
		sessions := repository.NewSessionRepository(pool)
		if err := seedSession(ctx, sessions, token, pepper, user); err != nil {
			return errors.Wrap(err, "seed session")
		}
	}

	return nil
}

// seedProducts loads each product file concurrently and upserts its
// contents. Upserts by distinct files never touch the same row, so the
// writes are safe to interleave.
func seedProducts(ctx context.Context, repo *repository.ProductRepository, files []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		f := strings.TrimSpace(f)
		if f == "" {
			continue
		}
		g.Go(func() error {
			return seedProductsFile(ctx, repo, f)
		})
	}
	return g.Wait()
}

func seedProductsFile(ctx context.Context, repo *repository.ProductRepository, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	data, err := readMaybeGz(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}

	slog.Info("upserting products", slog.String("path", path), slog.Int("count", len(products)))

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := repo.Upsert(ctx, product.Product{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Images:      p.Images,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	return nil
}

// readMaybeGz reads a file, transparently decompressing a .gz suffix.
func readMaybeGz(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if !strings.HasSuffix(path, ".gz") {
		return io.ReadAll(f)
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	return io.ReadAll(gz)
}

func seedSession(ctx context.Context, sessions *repository.SessionRepository, token, pepper string, user identity.Identity) error {
	slog.Info("seeding development session", slog.String("user_id", user.ID))

	verifier := identity.NewVerifier(sessions, []byte(pepper))
	err := sessions.Upsert(ctx, identity.Session{
		TokenHash: verifier.HashToken(token),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
	}, time.Now().Add(sessionTTL))
	if err != nil {
		return errors.Wrap(err, "upsert session")
	}

	slog.Info("seeded session", slog.String("user_id", user.ID), slog.String("email", user.Email))
	return nil
}

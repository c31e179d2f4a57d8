// eventcart keeps a ticket cart for one session against an event catalog.
//
// The catalog comes from an events.json document or from Postgres; the cart
// is stored in a local file, in Postgres or in Redis, chosen through the
// environment (see internal/config).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/eventcart/internal/cart"
	"github.com/nikolayk812/eventcart/internal/catalog"
	"github.com/nikolayk812/eventcart/internal/config"
	"github.com/nikolayk812/eventcart/internal/domain"
	"github.com/nikolayk812/eventcart/internal/migrations"
	"github.com/nikolayk812/eventcart/internal/port"
	"github.com/nikolayk812/eventcart/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrPersistence) {
			fmt.Fprintln(os.Stderr, "the cart change may not have been saved")
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var session string

	flagSet := pflag.NewFlagSet("eventcart", pflag.ContinueOnError)
	flagSet.StringVar(&session, "session", "", "cart session id (default: $EVENTCART_SESSION)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if session != "" {
		cfg.Session = session
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.Timeout)
	defer cancel()

	deps, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	command, params := rest[0], rest[1:]

	if command == "seed" {
		return seed(ctx, cfg, deps, out)
	}

	store := cart.NewStore(deps.catalog, deps.slot,
		cart.WithLogger(logger.With("session", cfg.Session)),
		cart.WithCurrency(cfg.Catalog.Currency),
	)
	store.Load(ctx)

	switch command {
	case "events":
		return printEvents(ctx, deps.catalog, out)
	case "show":
		return printSummary(ctx, store, out)
	case "add":
		id, qty, err := parseIDQty(params, true)
		if err != nil {
			return err
		}
		if _, err := store.AddItem(ctx, id, qty); err != nil {
			return fmt.Errorf("store.AddItem: %w", err)
		}
		return printSummary(ctx, store, out)
	case "set":
		id, qty, err := parseIDQty(params, false)
		if err != nil {
			return err
		}
		if _, err := store.SetQuantity(ctx, id, qty); err != nil {
			return fmt.Errorf("store.SetQuantity: %w", err)
		}
		return printSummary(ctx, store, out)
	case "remove":
		if len(params) != 1 {
			return fmt.Errorf("usage: eventcart remove EVENT_ID")
		}
		id, err := strconv.ParseInt(params[0], 10, 64)
		if err != nil {
			return fmt.Errorf("event id[%s] is not valid: %w", params[0], err)
		}
		if _, err := store.RemoveItem(ctx, id); err != nil {
			return fmt.Errorf("store.RemoveItem: %w", err)
		}
		return printSummary(ctx, store, out)
	case "checkout":
		receipt, err := store.Checkout(ctx)
		if err != nil {
			return fmt.Errorf("store.Checkout: %w", err)
		}
		return printReceipt(receipt, out)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

type dependencies struct {
	catalog port.Catalog
	slot    port.CartSlot
	pool    *pgxpool.Pool
	closers []func()
}

func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *dependencies, err error) {
	deps := &dependencies{}
	defer func() {
		if err != nil {
			deps.close()
		}
	}()

	if cfg.NeedsDatabase() {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		deps.pool = pool
		deps.closers = append(deps.closers, pool.Close)

		if err := migrations.Apply(ctx, pool); err != nil {
			return nil, fmt.Errorf("migrations.Apply: %w", err)
		}
	}

	switch cfg.Catalog.Source {
	case config.CatalogPostgres:
		deps.catalog = repository.NewEventCatalog(deps.pool, cfg.Catalog.Currency)
	default:
		deps.catalog, err = catalog.LoadFile(cfg.Catalog.File, cfg.Catalog.Currency)
		if err != nil {
			return nil, fmt.Errorf("catalog.LoadFile: %w", err)
		}
	}

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		deps.slot = repository.NewCartSlot(deps.pool, cfg.Session)
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deps.closers = append(deps.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close failed", "error", err)
			}
		})
		deps.slot = repository.NewRedisCartSlot(client, cfg.Session, cfg.Redis.CartTTL)
	default:
		deps.slot = repository.NewFileCartSlot(filepath.Join(cfg.Storage.CartDir, url.PathEscape(cfg.Session)+".json"))
	}

	logger.Debug("connected",
		"catalog", cfg.Catalog.Source,
		"storage", cfg.Storage.Backend,
		"session", cfg.Session,
	)

	return deps, nil
}

func seed(ctx context.Context, cfg *config.Config, deps *dependencies, out io.Writer) error {
	if deps.pool == nil {
		return fmt.Errorf("seed needs DATABASE_URL and EVENTCART_CATALOG=postgres")
	}

	f, err := os.Open(cfg.Catalog.File)
	if err != nil {
		return fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	events, err := catalog.Decode(f, cfg.Catalog.Currency)
	if err != nil {
		return fmt.Errorf("catalog.Decode: %w", err)
	}

	n, err := repository.NewEventCatalog(deps.pool, cfg.Catalog.Currency).ReplaceEvents(ctx, events)
	if err != nil {
		return fmt.Errorf("ReplaceEvents: %w", err)
	}

	fmt.Fprintf(out, "seeded %d events\n", n)
	return nil
}

func parseIDQty(params []string, qtyOptional bool) (int64, int, error) {
	if len(params) < 1 || len(params) > 2 || (!qtyOptional && len(params) != 2) {
		return 0, 0, fmt.Errorf("usage: EVENT_ID QUANTITY")
	}

	id, err := strconv.ParseInt(params[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("event id[%s] is not valid: %w", params[0], err)
	}

	qty := 1
	if len(params) == 2 {
		qty, err = strconv.Atoi(params[1])
		if err != nil {
			return 0, 0, fmt.Errorf("quantity[%s] is not valid: %w", params[1], err)
		}
	}

	return id, qty, nil
}

func printEvents(ctx context.Context, c port.Catalog, out io.Writer) error {
	events, err := c.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("catalog.ListEvents: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEVENT\tCITY\tDATE\tPRICE\tSTOCK")
	for _, event := range events {
		stock := strconv.Itoa(event.Stock)
		if event.SoldOut() {
			stock = "sold out"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			event.ID, event.Title, event.City, event.StartsAt.Format("2006-01-02 15:04"), event.Price, stock)
	}
	return w.Flush()
}

func printSummary(ctx context.Context, store *cart.Store, out io.Writer) error {
	summary, err := store.Summary(ctx)
	if err != nil {
		return fmt.Errorf("store.Summary: %w", err)
	}

	if len(summary.Lines) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEVENT\tQTY\tPRICE\tSUBTOTAL")
	for _, line := range summary.Lines {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			line.Event.ID, line.Event.Title, line.Quantity, line.Event.Price, line.Subtotal)
	}
	fmt.Fprintf(w, "\t\t%d\t\t%s\n", summary.ItemCount, summary.Total)
	return w.Flush()
}

func printReceipt(receipt domain.Receipt, out io.Writer) error {
	fmt.Fprintf(out, "receipt %s at %s\n", receipt.ID, receipt.CapturedAt.Format("2006-01-02 15:04:05"))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, line := range receipt.Lines {
		fmt.Fprintf(w, "%s\tx%d\t%s\n", line.Event.Title, line.Quantity, line.Subtotal)
	}
	fmt.Fprintf(w, "total\t\t%s\n", receipt.Total)
	return w.Flush()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `eventcart keeps a ticket cart for one session.

Usage:
  eventcart [flags] events
  eventcart [flags] show
  eventcart [flags] add EVENT_ID [QUANTITY]
  eventcart [flags] set EVENT_ID QUANTITY
  eventcart [flags] remove EVENT_ID
  eventcart [flags] checkout
  eventcart [flags] seed

Flags:
%s`, flagSet.FlagUsages())
}

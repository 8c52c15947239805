package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditRepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/services"
)

// SampleBooks is the built-in data set loaded by the seed command.
var SampleBooks = []services.BookInput{
	{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Year: 1965},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227", Year: 1937},
	{Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", ISBN: "9780547928210", Year: 1954},
	{Title: "Neuromancer", Author: "William Gibson", ISBN: "9780441569595", Year: 1984},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", ISBN: "9780441478125", Year: 1969},
	{Title: "Foundation", Author: "Isaac Asimov", ISBN: "9780553293357", Year: 1951},
	{Title: "Hyperion", Author: "Dan Simmons", ISBN: "9780553283686", Year: 1989},
	{Title: "Snow Crash", Author: "Neal Stephenson", ISBN: "9780553380958", Year: 1992},
	{Title: "The Dispossessed", Author: "Ursula K. Le Guin", ISBN: "9780061054884", Year: 1974},
	{Title: "Solaris", Author: "Stanislaw Lem", ISBN: "9780156027601", Year: 1961},
	{Title: "Brave New World", Author: "Aldous Huxley", ISBN: "9780060850524", Year: 1932},
	{Title: "Nineteen Eighty-Four", Author: "George Orwell", ISBN: "9780451524935", Year: 1949},
	{Title: "Fahrenheit 451", Author: "Ray Bradbury", ISBN: "9781451673319", Year: 1953},
	{Title: "The Road", Author: "Cormac McCarthy", ISBN: "9780307387899", Year: 2006},
	{Title: "Never Let Me Go", Author: "Kazuo Ishiguro", ISBN: "9781400078776", Year: 2005},
	{Title: "The Name of the Wind", Author: "Patrick Rothfuss", ISBN: "9780756404741", Year: 2007},
	{Title: "Piranesi", Author: "Susanna Clarke", ISBN: "9781635575637", Year: 2020},
	{Title: "Project Hail Mary", Author: "Andy Weir", ISBN: "9780593135204", Year: 2021},
	{Title: "The Three-Body Problem", Author: "Liu Cixin", ISBN: "9780765382030", Year: 2008},
	{Title: "Station Eleven", Author: "Emily St. John Mandel", ISBN: "9780804172448", Year: 2014},
	{Title: "Klara and the Sun", Author: "Kazuo Ishiguro", ISBN: "9780593318171", Year: 2021},
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Created int
	Skipped int
}

type SeedCommand struct {
	DatabasePath string
	Driver       string
	DSN          string
	Verbose      bool

	out io.Writer
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{out: os.Stdout}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()

	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the sqlite database file")
	fs.StringVar(&cmd.Driver, "driver", cfg.Database.Driver, "Database driver (sqlite or mysql)")
	fs.StringVar(&cmd.DSN, "dsn", cfg.Database.DSN, "MySQL DSN (mysql driver only)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every inserted or skipped book")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load the built-in sample books into the catalog. Books whose ISBN is\n")
		fmt.Fprintf(os.Stderr, "already present are skipped, so the command can be run repeatedly.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -db ./demo.db -verbose\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(config.Database{
		Driver:   cmd.Driver,
		Path:     cmd.DatabasePath,
		DSN:      cmd.DSN,
		LogLevel: "error",
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	catalog := services.NewCatalog(books.NewRepository(db.DB), auditService)

	result, err := cmd.Seed(context.Background(), catalog, SampleBooks)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Seeded %d books (%d already present)\n", result.Created, result.Skipped)
	return nil
}

// Seed inserts each input through the catalog, skipping ISBNs that are
// already taken. Any other failure stops the run.
func (cmd *SeedCommand) Seed(ctx context.Context, catalog *services.Catalog, inputs []services.BookInput) (SeedResult, error) {
	var result SeedResult
	for _, in := range inputs {
		book, err := catalog.CreateBook(ctx, in)
		switch {
		case err == nil:
			result.Created++
			if cmd.Verbose {
				log.Printf("Created #%d %q by %s", book.ID, book.Title, book.Author)
			}
		case errors.Is(err, services.ErrDuplicateISBN):
			result.Skipped++
			if cmd.Verbose {
				log.Printf("Skipped %q: ISBN %s already present", in.Title, in.ISBN)
			}
		default:
			return result, fmt.Errorf("seed %q: %w", in.Title, err)
		}
	}
	return result, nil
}

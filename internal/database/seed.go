package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"

	"gorm.io/gorm"
)

const (
	SeedUserName  = "John Doe"
	SeedUserEmail = "johndoe@example.com"
)

type Hasher interface {
	Hash(password string) (string, error)
}

type SeedReport struct {
	CreatedUsers   int  `json:"created_users"`
	CreatedAuthors int  `json:"created_authors"`
	CreatedBooks   int  `json:"created_books"`
	Noop           bool `json:"noop"`
}

type seedAuthor struct {
	name     string
	birthday time.Time
	country  string
	bio      string
	books    []seedBook
}

type seedBook struct {
	title     string
	isbn      string
	pages     int
	publisher string
	language  string
	genres    []string
}

var sampleCatalog = []seedAuthor{
	{
		name: "Ada Whitfield", birthday: date(1961, 3, 14), country: "Ireland",
		bio: "Novelist writing about coastal towns and the people who never leave them.",
		books: []seedBook{
			{"The Harbour Lights", "978-0-00-000101-1", 312, "Northgate Press", "EN", []string{"Fiction"}},
			{"Salt and Ledger", "978-0-00-000102-8", 288, "Northgate Press", "EN", []string{"Fiction"}},
			{"A Quiet Tide", "978-0-00-000103-5", 245, "Northgate Press", "EN", []string{"Fiction", "Drama"}},
			{"Lamplighters", "978-0-00-000104-2", 401, "Harrow & Finch", "EN", []string{"Fiction"}},
			{"The Ferryman's Daughter", "978-0-00-000105-9", 356, "Harrow & Finch", "EN", []string{"Fiction"}},
		},
	},
	{
		name: "Tomás Ribeiro", birthday: date(1975, 9, 2), country: "Portugal",
		bio: "Former cartographer turned author of travel fiction.",
		books: []seedBook{
			{"Maps of Nowhere", "978-0-00-000201-8", 210, "Atlas House", "PT", []string{"Fiction", "Travel"}},
			{"The Last Meridian", "978-0-00-000202-5", 333, "Atlas House", "PT", []string{"Fiction"}},
			{"Compass Rose", "978-0-00-000203-2", 198, "Atlas House", "PT", []string{"Fiction"}},
			{"Latitude Zero", "978-0-00-000204-9", 276, "Meridian Books", "PT", []string{"Fiction", "Adventure"}},
			{"Inland Seas", "978-0-00-000205-6", 402, "Meridian Books", "PT", []string{"Fiction"}},
		},
	},
	{
		name: "Hana Sato", birthday: date(1983, 6, 21), country: "Japan",
		bio: "Writes quiet speculative fiction set in near-future cities.",
		books: []seedBook{
			{"Glass Orchard", "978-0-00-000301-5", 264, "Kite Street", "JA", []string{"Fiction", "Science Fiction"}},
			{"Night Trains", "978-0-00-000302-2", 230, "Kite Street", "JA", []string{"Fiction"}},
			{"The Paper Engine", "978-0-00-000303-9", 318, "Kite Street", "JA", []string{"Science Fiction"}},
			{"Signal Garden", "978-0-00-000304-6", 289, "Lumen", "JA", []string{"Science Fiction"}},
			{"Rain Archive", "978-0-00-000305-3", 345, "Lumen", "JA", []string{"Fiction"}},
		},
	},
	{
		name: "Kwame Mensah", birthday: date(1958, 11, 30), country: "Ghana",
		bio: "Historian and storyteller of West African trade routes.",
		books: []seedBook{
			{"Gold Coast Letters", "978-0-00-000401-2", 420, "Baobab", "EN", []string{"History"}},
			{"The Caravan Year", "978-0-00-000402-9", 380, "Baobab", "EN", []string{"History", "Fiction"}},
			{"River of Kings", "978-0-00-000403-6", 455, "Baobab", "EN", []string{"History"}},
			{"Market Days", "978-0-00-000404-3", 199, "Sankofa", "EN", []string{"Fiction"}},
			{"Drums at Dusk", "978-0-00-000405-0", 267, "Sankofa", "EN", []string{"Fiction"}},
		},
	},
	{
		name: "Ingrid Halvorsen", birthday: date(1969, 1, 8), country: "Norway",
		bio: "Crime writer known for slow-burning mysteries in the far north.",
		books: []seedBook{
			{"White Silence", "978-0-00-000501-9", 352, "Fjord Noir", "NO", []string{"Mystery"}},
			{"The Ice Ledger", "978-0-00-000502-6", 298, "Fjord Noir", "NO", []string{"Mystery", "Thriller"}},
			{"Polar Night", "978-0-00-000503-3", 376, "Fjord Noir", "NO", []string{"Mystery"}},
			{"Cold Harbour", "978-0-00-000504-0", 311, "Aurora", "NO", []string{"Thriller"}},
			{"Under the Lights", "978-0-00-000505-7", 287, "Aurora", "NO", []string{"Mystery"}},
		},
	},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SeedPlan describes what Seed ensures without touching the database.
func SeedPlan() []string {
	books := 0
	for _, a := range sampleCatalog {
		books += len(a.books)
	}
	return []string{
		fmt.Sprintf("would ensure user %s <%s> (password = email)", SeedUserName, SeedUserEmail),
		fmt.Sprintf("would ensure %d authors", len(sampleCatalog)),
		fmt.Sprintf("would ensure %d books", books),
	}
}

// Seed inserts the sample user and catalog. Existing rows are left as they are.
func Seed(ctx context.Context, db *gorm.DB, hasher Hasher) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	report, err := seed(ctx, db, hasher)
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
		return nil, err
	}
	observability.RecordDatabaseStartupEvent(ctx, "seed", "success")
	return report, nil
}

func seed(ctx context.Context, db *gorm.DB, hasher Hasher) (*SeedReport, error) {
	if hasher == nil {
		return nil, errors.New("seed requires a password hasher")
	}
	report := &SeedReport{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		err := tx.Where("email = ?", SeedUserEmail).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := hasher.Hash(SeedUserEmail)
			if err != nil {
				return err
			}
			user = domain.User{Name: SeedUserName, Email: SeedUserEmail, PasswordHash: hash}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seed user: %w", err)
			}
			report.CreatedUsers++
		case err != nil:
			return fmt.Errorf("lookup seed user: %w", err)
		}

		for _, sa := range sampleCatalog {
			bio := sa.bio
			author := domain.Author{Name: sa.name, Birthday: sa.birthday, Country: sa.country, Bio: &bio}
			res := tx.Omit("Books").Where("name = ?", sa.name).FirstOrCreate(&author)
			if res.Error != nil {
				return fmt.Errorf("seed author %q: %w", sa.name, res.Error)
			}
			if res.RowsAffected > 0 {
				report.CreatedAuthors++
			}
			for _, sb := range sa.books {
				desc := fmt.Sprintf("%s by %s.", sb.title, sa.name)
				book := domain.Book{
					Title:       sb.title,
					ISBN:        sb.isbn,
					Published:   sa.birthday.AddDate(40, 0, 0),
					Publisher:   sb.publisher,
					Pages:       sb.pages,
					Language:    sb.language,
					Genres:      domain.StringList(sb.genres),
					Description: &desc,
					AuthorID:    author.ID,
				}
				res := tx.Omit("Author").Where("title = ? AND author_id = ?", sb.title, author.ID).FirstOrCreate(&book)
				if res.Error != nil {
					return fmt.Errorf("seed book %q: %w", sb.title, res.Error)
				}
				if res.RowsAffected > 0 {
					report.CreatedBooks++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.Noop = report.CreatedUsers == 0 && report.CreatedAuthors == 0 && report.CreatedBooks == 0
	return report, nil
}

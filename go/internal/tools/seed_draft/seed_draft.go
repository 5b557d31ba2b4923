package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mcdev12/draftroom/go/internal/auth"
	"github.com/mcdev12/draftroom/go/internal/dbconfig"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/leagues"
	"github.com/mcdev12/draftroom/go/internal/models"
)

type seedConfig struct {
	Teams       int    `env:"SEED_TEAMS" envDefault:"4"`
	Rounds      int    `env:"SEED_ROUNDS" envDefault:"3"`
	PickSeconds int    `env:"SEED_PICK_SECONDS" envDefault:"60"`
	Players     int    `env:"SEED_PLAYERS" envDefault:"40"`
	QBCap       int    `env:"SEED_QB_CAP" envDefault:"1"`
	JWTSecret   string `env:"JWT_SECRET,required"`
}

var positions = []string{"QB", "RB", "WR", "TE", "RB", "WR"}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// seats numbers teams 1..n in draft order.
func seats(order []uuid.UUID) map[uuid.UUID]int {
	seat := make(map[uuid.UUID]int, len(order))
	for i, id := range order {
		seat[id] = i + 1
	}
	return seat
}

// printBoard writes one line per round listing the seat on the clock for
// each pick.
func printBoard(w io.Writer, order []uuid.UUID, rounds int) {
	seat := seats(order)
	for _, slot := range pick.Grid(order, rounds) {
		if slot.PickInRound == 1 {
			fmt.Fprintf(w, "round %d:", slot.Round)
		}
		fmt.Fprintf(w, " %d", seat[slot.TeamID])
		if slot.PickInRound == len(order) {
			fmt.Fprintln(w)
		}
	}
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		fail("parse seed config: %v", err)
	}
	if cfg.Players < cfg.Teams*cfg.Rounds {
		fail("need at least %d players for %d teams x %d rounds", cfg.Teams*cfg.Rounds, cfg.Teams, cfg.Rounds)
	}

	// 1) Connect using shared dbconfig
	dbCfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fail("load db config: %v", err)
	}
	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		fail("failed to connect: %v", err)
	}
	defer pool.Close()

	// 2) Apply the schema. It holds several statements, so it goes through
	// the simple protocol.
	conn, err := pool.Acquire(ctx)
	if err != nil {
		fail("acquire connection: %v", err)
	}
	if _, err := conn.Conn().PgConn().Exec(ctx, repository.Schema).ReadAll(); err != nil {
		conn.Release()
		fail("apply schema: %v", err)
	}
	conn.Release()

	// 3) Insert league, teams and players in one transaction
	commissioner := uuid.New()
	leagueID := uuid.New()
	owners := make([]uuid.UUID, cfg.Teams)
	teams := make([]uuid.UUID, cfg.Teams)

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		settings, err := json.Marshal(models.LeagueSettings{RosterCaps: map[string]int{"QB": cfg.QBCap}})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO leagues (id, name, commissioner_id, settings)
            VALUES ($1, $2, $3, $4)`,
			leagueID, "Seeded League", commissioner, settings,
		); err != nil {
			return fmt.Errorf("insert league: %w", err)
		}

		for i := range owners {
			owners[i] = uuid.New()
			teams[i] = uuid.New()
			if _, err := tx.Exec(ctx, `
                INSERT INTO fantasy_teams (id, league_id, owner_id, name, created_at)
                VALUES ($1, $2, $3, $4, $5)`,
				teams[i], leagueID, owners[i], fmt.Sprintf("Team %d", i+1), time.Now().Add(time.Duration(i)*time.Millisecond),
			); err != nil {
				return fmt.Errorf("insert team %d: %w", i+1, err)
			}
		}

		batch := &pgx.Batch{}
		for i := 0; i < cfg.Players; i++ {
			batch.Queue(`
                INSERT INTO players (id, full_name, position, adp_rank)
                VALUES ($1, $2, $3, $4)`,
				uuid.New(), fmt.Sprintf("Player %02d", i+1), positions[i%len(positions)], i+1,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert players: %w", err)
		}
		return nil
	})
	if err != nil {
		fail("seed: %v", err)
	}

	// 4) Create the draft the way the server reads it back
	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		fail("open database: %v", err)
	}
	defer db.Close()

	order, err := leagues.NewApp(leagues.NewRepository(db)).TeamOrder(ctx, leagueID)
	if err != nil {
		fail("load team order: %v", err)
	}
	draft := &models.Draft{
		ID:          uuid.New(),
		LeagueID:    leagueID,
		TeamOrder:   order,
		RoundsTotal: cfg.Rounds,
		PickSeconds: cfg.PickSeconds,
	}
	if err := repository.NewRepository(db).CreateDraft(ctx, draft); err != nil {
		fail("create draft: %v", err)
	}

	// 5) Print ids, the board and tokens for manual testing
	seat := seats(order)
	fmt.Printf("league:       %s\n", leagueID)
	fmt.Printf("draft:        %s\n", draft.ID)
	printBoard(os.Stdout, order, cfg.Rounds)
	token, err := auth.Issue(cfg.JWTSecret, commissioner, 24*time.Hour)
	if err != nil {
		fail("issue token: %v", err)
	}
	fmt.Printf("commissioner: %s\n  token: %s\n", commissioner, token)
	for i, owner := range owners {
		token, err := auth.Issue(cfg.JWTSecret, owner, 24*time.Hour)
		if err != nil {
			fail("issue token: %v", err)
		}
		fmt.Printf("team %d:       %s (owner %s)\n  token: %s\n", seat[teams[i]], teams[i], owner, token)
	}
}

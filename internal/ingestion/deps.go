package ingestion

import (
	"context"
	"time"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/repository"
)

// StatsAPI is the subset of the MLB Stats API the steps read from
type StatsAPI interface {
	FetchTeams(ctx context.Context) ([]client.Team, error)
	FetchRoster(ctx context.Context, teamMlbID, season int) ([]client.RosterEntry, error)
	FetchPerson(ctx context.Context, personID int) (*client.Person, error)
	FetchSchedule(ctx context.Context, start, end time.Time) ([]client.ScheduleGame, error)
	FetchPlayerStats(ctx context.Context, personID, season int, group string) ([]client.StatSplit, error)
	FetchStandings(ctx context.Context, season int) ([]client.TeamRecord, error)
	FetchBoxScore(ctx context.Context, gamePk int) ([]byte, error)
	FetchLinescore(ctx context.Context, gamePk int) (*client.Linescore, error)
	FetchSabermetrics(ctx context.Context, personID, season int, group string) ([]byte, error)
}

var _ StatsAPI = (*client.Client)(nil)

// TeamStore persists teams
type TeamStore interface {
	Upsert(ctx context.Context, team *models.Team) (bool, error)
	GetByMlbID(ctx context.Context, mlbID int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
}

// PlayerStore persists players
type PlayerStore interface {
	Upsert(ctx context.Context, p *models.Player) (bool, error)
	GetByMlbID(ctx context.Context, mlbID int) (*models.Player, error)
	ListWithSeasonStats(ctx context.Context, season int) ([]*models.Player, error)
}

// RosterStore persists roster membership
type RosterStore interface {
	InsertIfAbsent(ctx context.Context, e *models.RosterEntry) (bool, error)
	ListPlayers(ctx context.Context, teamID, season int) ([]*models.Player, error)
}

// GameStore persists games, linescores and innings
type GameStore interface {
	Upsert(ctx context.Context, game *models.Game) (bool, error)
	ListFinalWithoutBoxScore(ctx context.Context, season int) ([]*models.Game, error)
	ListFinalWithoutInnings(ctx context.Context, season int) ([]*models.Game, error)
	UpdateLinescore(ctx context.Context, game *models.Game) error
	ReplaceInnings(ctx context.Context, gameID int, innings []models.GameInning) error
}

// StandingStore persists standings
type StandingStore interface {
	Upsert(ctx context.Context, s *models.Standing) (bool, error)
}

// StatStore persists season stat lines
type StatStore interface {
	UpsertBatting(ctx context.Context, s *models.BattingStats) (bool, error)
	UpsertPitching(ctx context.Context, s *models.PitchingStats) (bool, error)
	ListBattingByPlayer(ctx context.Context, playerID, season int) ([]*models.BattingStats, error)
	ListBattingBySeason(ctx context.Context, season int) ([]*models.BattingStats, error)
	ListPitchingByPlayer(ctx context.Context, playerID, season int) ([]*models.PitchingStats, error)
}

// BoxScoreStore persists per-game player lines
type BoxScoreStore interface {
	SaveGame(ctx context.Context, batting []models.PlayerGameBatting, pitching []models.PlayerGamePitching) error
}

// Stores bundles the domain stores the steps write to
type Stores struct {
	Teams     TeamStore
	Players   PlayerStore
	Rosters   RosterStore
	Games     GameStore
	Standings StandingStore
	Stats     StatStore
	BoxScores BoxScoreStore
}

// StoresFromDatabase wires the Postgres repositories
func StoresFromDatabase(db *repository.Database) Stores {
	return Stores{
		Teams:     db.Teams,
		Players:   db.Players,
		Rosters:   db.Rosters,
		Games:     db.Games,
		Standings: db.Standings,
		Stats:     db.Stats,
		BoxScores: db.BoxScores,
	}
}

// Result counts what a step did
type Result struct {
	Created int
	Updated int
	Skipped int
	Errors  int
}

// Processed is the number of records written
func (r Result) Processed() int {
	return r.Created + r.Updated
}

// Add accumulates another result
func (r *Result) Add(other Result) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

func (r *Result) count(created bool) {
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

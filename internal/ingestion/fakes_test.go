package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/models"
	"mlbstats/ingestion/internal/repository"

	"github.com/shopspring/decimal"
)

// fakeAPI serves canned upstream responses. Hooks run before the matching call returns.
type fakeAPI struct {
	mu sync.Mutex

	teams       []client.Team
	teamsErr    error
	rosters     map[int][]client.RosterEntry
	people      map[int]*client.Person
	schedule    []client.ScheduleGame
	scheduleErr error
	hitting     map[int][]client.StatSplit
	pitching    map[int][]client.StatSplit
	standings   []client.TeamRecord
	boxScores   map[int][]byte
	linescores  map[int]*client.Linescore
	saber       map[string][]byte

	onTeams func(ctx context.Context)
	calls   map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		rosters:    map[int][]client.RosterEntry{},
		people:     map[int]*client.Person{},
		hitting:    map[int][]client.StatSplit{},
		pitching:   map[int][]client.StatSplit{},
		boxScores:  map[int][]byte{},
		linescores: map[int]*client.Linescore{},
		saber:      map[string][]byte{},
		calls:      map[string]int{},
	}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) FetchTeams(ctx context.Context) ([]client.Team, error) {
	f.record("teams")
	if f.onTeams != nil {
		f.onTeams(ctx)
	}
	return f.teams, f.teamsErr
}

func (f *fakeAPI) FetchRoster(_ context.Context, teamMlbID, _ int) ([]client.RosterEntry, error) {
	f.record("roster")
	return f.rosters[teamMlbID], nil
}

func (f *fakeAPI) FetchPerson(_ context.Context, personID int) (*client.Person, error) {
	f.record("person")
	p, ok := f.people[personID]
	if !ok {
		return nil, fmt.Errorf("person %d: %w", personID, client.ErrNotFound)
	}
	return p, nil
}

func (f *fakeAPI) FetchSchedule(context.Context, time.Time, time.Time) ([]client.ScheduleGame, error) {
	f.record("schedule")
	return f.schedule, f.scheduleErr
}

func (f *fakeAPI) FetchPlayerStats(_ context.Context, personID, _ int, group string) ([]client.StatSplit, error) {
	f.record("stats:" + group)
	if group == client.GroupPitching {
		return f.pitching[personID], nil
	}
	return f.hitting[personID], nil
}

func (f *fakeAPI) FetchStandings(context.Context, int) ([]client.TeamRecord, error) {
	f.record("standings")
	return f.standings, nil
}

func (f *fakeAPI) FetchBoxScore(_ context.Context, gamePk int) ([]byte, error) {
	f.record("boxscore")
	b, ok := f.boxScores[gamePk]
	if !ok {
		return nil, client.ErrNotFound
	}
	return b, nil
}

func (f *fakeAPI) FetchLinescore(_ context.Context, gamePk int) (*client.Linescore, error) {
	f.record("linescore")
	ls, ok := f.linescores[gamePk]
	if !ok {
		return nil, client.ErrNotFound
	}
	return ls, nil
}

func (f *fakeAPI) FetchSabermetrics(_ context.Context, personID, _ int, group string) ([]byte, error) {
	f.record("saber:" + group)
	return f.saber[fmt.Sprintf("%d:%s", personID, group)], nil
}

type statKey struct {
	player, team, season int
}

// memDB is an in-memory domain store shared by the per-table fakes below
type memDB struct {
	mu     sync.Mutex
	nextID int

	teams        map[int]*models.Team
	players      map[int]*models.Player
	rosters      map[statKey]*models.RosterEntry
	games        map[int]*models.Game
	innings      map[int][]models.GameInning
	standings    map[[2]int]*models.Standing
	batting      map[statKey]*models.BattingStats
	pitching     map[statKey]*models.PitchingStats
	gameBatting  map[int][]models.PlayerGameBatting
	gamePitching map[int][]models.PlayerGamePitching
}

func newMemDB() *memDB {
	return &memDB{
		teams:        map[int]*models.Team{},
		players:      map[int]*models.Player{},
		rosters:      map[statKey]*models.RosterEntry{},
		games:        map[int]*models.Game{},
		innings:      map[int][]models.GameInning{},
		standings:    map[[2]int]*models.Standing{},
		batting:      map[statKey]*models.BattingStats{},
		pitching:     map[statKey]*models.PitchingStats{},
		gameBatting:  map[int][]models.PlayerGameBatting{},
		gamePitching: map[int][]models.PlayerGamePitching{},
	}
}

func (db *memDB) stores() Stores {
	return Stores{
		Teams:     memTeams{db},
		Players:   memPlayers{db},
		Rosters:   memRosters{db},
		Games:     memGames{db},
		Standings: memStandings{db},
		Stats:     memStats{db},
		BoxScores: memBoxScores{db},
	}
}

func (db *memDB) id() int {
	db.nextID++
	return db.nextID
}

type memTeams struct{ *memDB }

func (m memTeams) Upsert(_ context.Context, t *models.Team) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.teams[t.MlbID]; ok {
		t.ID = existing.ID
		c := *t
		m.teams[t.MlbID] = &c
		return false, nil
	}
	t.ID = m.id()
	c := *t
	m.teams[t.MlbID] = &c
	return true, nil
}

func (m memTeams) GetByMlbID(_ context.Context, mlbID int) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[mlbID]
	if !ok {
		return nil, fmt.Errorf("team not found: mlb_id=%d: %w", mlbID, repository.ErrNotFound)
	}
	c := *t
	return &c, nil
}

func (m memTeams) List(context.Context) ([]*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Team
	for _, t := range m.teams {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

type memPlayers struct{ *memDB }

func (m memPlayers) Upsert(_ context.Context, p *models.Player) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := true
	if existing, ok := m.players[p.MlbID]; ok {
		p.ID = existing.ID
		created = false
	} else {
		p.ID = m.id()
	}
	c := *p
	m.players[p.MlbID] = &c
	return created, nil
}

func (m memPlayers) GetByMlbID(_ context.Context, mlbID int) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[mlbID]
	if !ok {
		return nil, fmt.Errorf("player not found: mlb_id=%d: %w", mlbID, repository.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (m memPlayers) ListWithSeasonStats(_ context.Context, season int) ([]*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := map[int]bool{}
	for k := range m.batting {
		if k.season == season {
			ids[k.player] = true
		}
	}
	for k := range m.pitching {
		if k.season == season {
			ids[k.player] = true
		}
	}
	var out []*models.Player
	for _, p := range m.players {
		if ids[p.ID] {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m memPlayers) byID(id int) *models.Player {
	for _, p := range m.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

type memRosters struct{ *memDB }

func (m memRosters) InsertIfAbsent(_ context.Context, e *models.RosterEntry) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statKey{e.PlayerID, e.TeamID, e.Season}
	if _, ok := m.rosters[key]; ok {
		return false, nil
	}
	c := *e
	m.rosters[key] = &c
	return true, nil
}

func (m memRosters) ListPlayers(_ context.Context, teamID, season int) ([]*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Player
	for k := range m.rosters {
		if k.team == teamID && k.season == season {
			if p := (memPlayers{m.memDB}).byID(k.player); p != nil {
				c := *p
				out = append(out, &c)
			}
		}
	}
	return out, nil
}

type memGames struct{ *memDB }

func (m memGames) Upsert(_ context.Context, g *models.Game) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := true
	if existing, ok := m.games[g.MlbID]; ok {
		g.ID = existing.ID
		created = false
	} else {
		g.ID = m.id()
	}
	c := *g
	m.games[g.MlbID] = &c
	return created, nil
}

func (m memGames) listFinal(season int, has func(id int) bool) []*models.Game {
	var out []*models.Game
	for _, g := range m.games {
		if g.Season == season && g.IsFinal() && !has(g.ID) {
			c := *g
			out = append(out, &c)
		}
	}
	return out
}

func (m memGames) ListFinalWithoutBoxScore(_ context.Context, season int) ([]*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listFinal(season, func(id int) bool { return len(m.gameBatting[id]) > 0 }), nil
}

func (m memGames) ListFinalWithoutInnings(_ context.Context, season int) ([]*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listFinal(season, func(id int) bool { return len(m.innings[id]) > 0 }), nil
}

func (m memGames) UpdateLinescore(_ context.Context, g *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *g
	m.games[g.MlbID] = &c
	return nil
}

func (m memGames) ReplaceInnings(_ context.Context, gameID int, innings []models.GameInning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.innings[gameID] = append([]models.GameInning(nil), innings...)
	return nil
}

type memStandings struct{ *memDB }

func (m memStandings) Upsert(_ context.Context, s *models.Standing) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int{s.TeamID, s.Season}
	_, exists := m.standings[key]
	c := *s
	m.standings[key] = &c
	return !exists, nil
}

type memStats struct{ *memDB }

func (m memStats) UpsertBatting(_ context.Context, s *models.BattingStats) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statKey{s.PlayerID, s.TeamID, s.Season}
	existing, ok := m.batting[key]
	if ok {
		s.ID = existing.ID
	} else {
		s.ID = m.id()
	}
	c := *s
	m.batting[key] = &c
	return !ok, nil
}

func (m memStats) UpsertPitching(_ context.Context, s *models.PitchingStats) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := statKey{s.PlayerID, s.TeamID, s.Season}
	existing, ok := m.pitching[key]
	if ok {
		s.ID = existing.ID
	} else {
		s.ID = m.id()
	}
	c := *s
	m.pitching[key] = &c
	return !ok, nil
}

func (m memStats) ListBattingByPlayer(_ context.Context, playerID, season int) ([]*models.BattingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.BattingStats
	for k, s := range m.batting {
		if k.player == playerID && k.season == season {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m memStats) ListBattingBySeason(_ context.Context, season int) ([]*models.BattingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.BattingStats
	for k, s := range m.batting {
		if k.season == season {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m memStats) ListPitchingByPlayer(_ context.Context, playerID, season int) ([]*models.PitchingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PitchingStats
	for k, s := range m.pitching {
		if k.player == playerID && k.season == season {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

type memBoxScores struct{ *memDB }

func (m memBoxScores) SaveGame(_ context.Context, batting []models.PlayerGameBatting, pitching []models.PlayerGamePitching) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range batting {
		m.gameBatting[b.GameID] = append(m.gameBatting[b.GameID], b)
	}
	for _, p := range pitching {
		m.gamePitching[p.GameID] = append(m.gamePitching[p.GameID], p)
	}
	return nil
}

type stubConstants map[int]*models.LeagueConstants

func (s stubConstants) GetBySeason(_ context.Context, season int) (*models.LeagueConstants, error) {
	return s[season], nil
}

func constants2024() *models.LeagueConstants {
	return &models.LeagueConstants{
		Season:      2024,
		LgWoba:      decimal.RequireFromString("0.310"),
		WobaScale:   decimal.RequireFromString("1.177"),
		LgRPerPa:    decimal.RequireFromString("0.116"),
		FipConstant: decimal.RequireFromString("3.15"),
		RunsPerWin:  decimal.RequireFromString("10.0"),
	}
}

func intp(v int) *int { return &v }

func team(id int, name, division string) client.Team {
	t := client.Team{ID: id, Name: name, Abbreviation: name[:3]}
	t.Division.Name = division
	return t
}

func rosterEntry(id int, name, pos, posType string) client.RosterEntry {
	var e client.RosterEntry
	e.Person.ID = id
	e.Person.FullName = name
	e.Position = client.Position{Abbreviation: pos, Type: posType}
	e.Status.Code = "A"
	return e
}

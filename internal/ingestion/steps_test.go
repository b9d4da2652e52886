package ingestion

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mlbstats/ingestion/internal/client"
	"mlbstats/ingestion/internal/client/mocks"
	"mlbstats/ingestion/internal/gwar"
	"mlbstats/ingestion/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestIngester(api StatsAPI, feed client.LeaderboardFeed) (*Ingester, *memDB) {
	db := newMemDB()
	calc := gwar.NewCalculator(stubConstants{2024: constants2024()})
	return NewIngester(api, feed, db.stores(), calc, WithPacing(0, 0)), db
}

func seedTeam(t *testing.T, db *memDB, mlbID int, name string) *models.Team {
	t.Helper()
	team := &models.Team{MlbID: mlbID, Name: name}
	_, err := db.stores().Teams.Upsert(context.Background(), team)
	require.NoError(t, err)
	return team
}

func seedPlayer(t *testing.T, db *memDB, p *models.Player) *models.Player {
	t.Helper()
	_, err := db.stores().Players.Upsert(context.Background(), p)
	require.NoError(t, err)
	return p
}

func seedFinalGame(t *testing.T, db *memDB, mlbID int, home, away *models.Team) *models.Game {
	t.Helper()
	g := &models.Game{
		MlbID:      mlbID,
		Season:     2024,
		GameDate:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:     models.NullString(models.GameStatusFinal),
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
	}
	_, err := db.stores().Games.Upsert(context.Background(), g)
	require.NoError(t, err)
	return g
}

func TestSyncTeams_Idempotent(t *testing.T) {
	api := newFakeAPI()
	api.teams = []client.Team{
		team(147, "New York Yankees", "American League East"),
		team(119, "Los Angeles Dodgers", "National League West"),
	}
	in, db := newTestIngester(api, nil)
	ctx := context.Background()

	res, err := in.SyncTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2}, res)

	res, err = in.SyncTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2}, res, "Second run should update, not duplicate")
	assert.Len(t, db.teams, 2)

	assert.Equal(t, "East", db.teams[147].Division.String)
	assert.Equal(t, "West", db.teams[119].Division.String)
	assert.Equal(t, "New", db.teams[147].Abbreviation.String)
}

func TestSyncTeams_FetchError(t *testing.T) {
	api := newFakeAPI()
	api.teamsErr = errors.New("upstream down")
	in, _ := newTestIngester(api, nil)

	_, err := in.SyncTeams(context.Background())
	assert.ErrorContains(t, err, "upstream down")
}

func TestSyncRosters_CreatesPlayersAndSkipsExisting(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	yankees := seedTeam(t, db, 147, "New York Yankees")

	api.rosters[147] = []client.RosterEntry{
		rosterEntry(592450, "Aaron Judge", "RF", "Outfielder"),
		rosterEntry(999001, "Unknown Arm", "P", "Pitcher"),
	}
	weight := 282
	api.people[592450] = &client.Person{
		ID:              592450,
		FullName:        "Aaron Judge",
		FirstName:       "Aaron",
		LastName:        "Judge",
		PrimaryPosition: client.Position{Abbreviation: "RF", Type: "Outfielder"},
		BirthDate:       "1992-04-26",
		Height:          "6' 7\"",
		Weight:          &weight,
		Active:          true,
	}
	api.people[592450].BatSide.Code = "R"
	api.people[592450].PitchHand.Code = "R"

	ctx := context.Background()
	res, err := in.SyncRosters(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2}, res)

	judge := db.players[592450]
	require.NotNil(t, judge)
	assert.False(t, judge.IsIncomplete())
	assert.Equal(t, 1992, judge.BirthDate.Time.Year())
	assert.Equal(t, int32(282), judge.Weight.Int32)

	minimal := db.players[999001]
	require.NotNil(t, minimal, "Player without details should still be stored")
	assert.Equal(t, "Unknown Arm", minimal.FullName)
	assert.True(t, minimal.IsPitcher())
	assert.True(t, minimal.IsIncomplete())

	res, err = in.SyncRosters(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
	assert.Len(t, db.rosters, 2)
	assert.Equal(t, 3, api.callCount("person"), "Only the incomplete player should be fetched again")

	players, err := db.stores().Rosters.ListPlayers(ctx, yankees.ID, 2024)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestSyncGames_ConvertsToEasternAndSkipsUnknownTeams(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	yankees := seedTeam(t, db, 147, "New York Yankees")
	dodgers := seedTeam(t, db, 119, "Los Angeles Dodgers")

	var late client.ScheduleGame
	late.GamePk = 745001
	late.GameDate = "2024-04-02T00:05:00Z"
	late.GameType = "R"
	late.Season = "2024"
	late.Status.DetailedState = "Final"
	late.Teams.Home.Team.ID = 147
	late.Teams.Home.Score = intp(5)
	late.Teams.Home.ProbablePitcher = &client.Ref{ID: 543037}
	late.Teams.Away.Team.ID = 119
	late.Teams.Away.Score = intp(3)

	var orphan client.ScheduleGame
	orphan.GamePk = 745002
	orphan.GameDate = "2024-04-03T17:05:00Z"
	orphan.Teams.Home.Team.ID = 999
	orphan.Teams.Away.Team.ID = 119

	api.schedule = []client.ScheduleGame{late, orphan}

	res, err := in.SyncGames(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Skipped: 1}, res)

	game := db.games[745001]
	require.NotNil(t, game)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), game.GameDate, "Date should be the Eastern calendar day")
	require.True(t, game.ScheduledAt.Valid)
	assert.Equal(t, 20, game.ScheduledAt.Time.Hour())
	assert.Equal(t, 5, game.ScheduledAt.Time.Minute())
	assert.Equal(t, yankees.ID, game.HomeTeamID)
	assert.Equal(t, dodgers.ID, game.AwayTeamID)
	assert.Equal(t, 9, game.ScheduledInnings)
	assert.True(t, game.IsFinal())
	assert.Equal(t, int32(543037), game.HomeProbablePitcherMlb.Int32)
	assert.False(t, game.AwayProbablePitcherMlb.Valid)
	assert.Nil(t, db.games[745002])
}

func TestSeasonWindow(t *testing.T) {
	start, end := SeasonWindow(2024)
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, time.November, end.Month())
	assert.Equal(t, 30, end.Day())
}

func TestSyncStats_DerivedFieldsAndSplitTeam(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	ctx := context.Background()
	yankees := seedTeam(t, db, 147, "New York Yankees")

	batter := seedPlayer(t, db, &models.Player{MlbID: 592450, FullName: "Aaron Judge", Position: models.NullString("RF")})
	pitcher := seedPlayer(t, db, &models.Player{MlbID: 543037, FullName: "Gerrit Cole", PositionType: models.NullString("Pitcher")})
	for _, p := range []*models.Player{batter, pitcher} {
		_, err := db.stores().Rosters.InsertIfAbsent(ctx, &models.RosterEntry{TeamID: yankees.ID, PlayerID: p.ID, Season: 2024})
		require.NoError(t, err)
	}

	api.hitting[592450] = []client.StatSplit{{
		Season: "2024",
		Team:   &client.Ref{ID: 147},
		Stat: client.StatLine{
			GamesPlayed: intp(158), PlateAppearances: intp(704), AtBats: intp(559),
			Hits: intp(180), Doubles: intp(36), Triples: intp(1), HomeRuns: intp(58),
			Avg: ".322", Slg: ".701", Obp: ".458", Ops: "1.159", Babip: "-.--",
		},
	}}
	api.pitching[543037] = []client.StatSplit{{
		Stat: client.StatLine{
			InningsPitched: "180.0", StrikeOuts: intp(200), BaseOnBalls: intp(50), Hits: intp(150),
			Era: "3.41", Whip: "1.11",
		},
	}}

	res, err := in.SyncStats(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2}, res)

	bat := db.batting[statKey{batter.ID, yankees.ID, 2024}]
	require.NotNil(t, bat)
	assert.Equal(t, "0.379", bat.Iso.Decimal.StringFixed(3))
	assert.Equal(t, int32(95), bat.ExtraBaseHits.Int32)
	assert.False(t, bat.Babip.Valid, "Placeholder rates should be stored as null")
	assert.Equal(t, models.GameTypeRegular, bat.GameType)

	pitch := db.pitching[statKey{pitcher.ID, yankees.ID, 2024}]
	require.NotNil(t, pitch, "Split without a team should fall back to the roster team and season")
	assert.Equal(t, "10.00", pitch.KPer9.Decimal.StringFixed(2))
	assert.Equal(t, "2.50", pitch.BbPer9.Decimal.StringFixed(2))
	assert.Equal(t, "7.50", pitch.HPer9.Decimal.StringFixed(2))

	assert.Equal(t, 2, api.callCount("stats:hitting"))
	assert.Equal(t, 1, api.callCount("stats:pitching"), "Only pitchers should have pitching stats requested")

	res, err = in.SyncStats(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2}, res)
}

func TestPitchingFromAPI_NoInnings(t *testing.T) {
	line := pitchingFromAPI(client.StatLine{InningsPitched: "0.0", StrikeOuts: intp(3)})
	assert.False(t, line.KPer9.Valid)
}

func TestSyncStandings_Splits(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	yankees := seedTeam(t, db, 147, "New York Yankees")

	require.NoError(t, json.Unmarshal([]byte(`[
		{"team":{"id":147},"wins":94,"losses":68,"winningPercentage":".580","gamesBack":"-",
		 "divisionRank":"1","leagueRank":"1","wildCardRank":"",
		 "runsScored":815,"runsAllowed":668,"runDifferential":147,"streak":{"streakCode":"W2"},
		 "records":{"splitRecords":[
			{"wins":44,"losses":37,"type":"home"},
			{"wins":50,"losses":31,"type":"away"}]}},
		{"team":{"id":999},"wins":1,"losses":1}
	]`), &api.standings))

	res, err := in.SyncStandings(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Skipped: 1}, res)

	s := db.standings[[2]int{yankees.ID, 2024}]
	require.NotNil(t, s)
	assert.Equal(t, 94, s.Wins)
	assert.Equal(t, int32(1), s.DivisionRank.Int32)
	assert.False(t, s.WildCardRank.Valid)
	assert.Equal(t, int32(44), s.HomeWins.Int32)
	assert.Equal(t, int32(37), s.HomeLosses.Int32)
	assert.Equal(t, int32(50), s.AwayWins.Int32)
	assert.Equal(t, int32(31), s.AwayLosses.Int32)
	assert.Equal(t, "W2", s.StreakCode.String)
}

const boxScoreJSON = `{"teams":{
	"home":{"team":{"id":147},"pitchers":[543037],"players":{
		"ID592450":{"person":{"id":592450,"fullName":"Aaron Judge"},"battingOrder":"200",
			"stats":{"batting":{"atBats":4,"runs":1,"hits":2,"doubles":0,"triples":0,"homeRuns":1,"rbi":2,"baseOnBalls":1,"strikeOuts":1}}},
		"ID543037":{"person":{"id":543037,"fullName":"Gerrit Cole"},
			"stats":{"pitching":{"inningsPitched":"7.0","hits":3,"runs":1,"earnedRuns":1,"baseOnBalls":1,"strikeOuts":9,"numberOfPitches":101}}}
	}},
	"away":{"team":{"id":119},"pitchers":[],"players":{}}
}}`

func TestSyncBoxScores(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	ctx := context.Background()
	yankees := seedTeam(t, db, 147, "New York Yankees")
	dodgers := seedTeam(t, db, 119, "Los Angeles Dodgers")
	judge := seedPlayer(t, db, &models.Player{MlbID: 592450, FullName: "Aaron Judge"})

	game := seedFinalGame(t, db, 745001, yankees, dodgers)
	seedFinalGame(t, db, 745002, yankees, dodgers)
	api.boxScores[745001] = []byte(boxScoreJSON)

	res, err := in.SyncBoxScores(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Errors: 1}, res, "Missing box score should count as an error")

	require.Len(t, db.gameBatting[game.ID], 1)
	bat := db.gameBatting[game.ID][0]
	assert.Equal(t, judge.ID, bat.PlayerID)
	assert.Equal(t, yankees.ID, bat.TeamID)
	assert.Equal(t, int32(200), bat.BattingOrder.Int32)

	require.Len(t, db.gamePitching[game.ID], 1)
	assert.True(t, db.gamePitching[game.ID][0].IsStarter)
	cole := db.players[543037]
	require.NotNil(t, cole, "Unknown box score player should be created")
	assert.Equal(t, "Gerrit Cole", cole.FullName)

	_, err = in.SyncBoxScores(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, api.callCount("boxscore"), "Games with stored lines should not be fetched again")
}

func TestSyncBoxScores_EmptyPayloadIsError(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	yankees := seedTeam(t, db, 147, "New York Yankees")
	dodgers := seedTeam(t, db, 119, "Los Angeles Dodgers")
	seedFinalGame(t, db, 745001, yankees, dodgers)
	api.boxScores[745001] = []byte(`{"teams":{"home":{"team":{"id":147},"players":{}},"away":{"team":{"id":119},"players":{}}}}`)

	res, err := in.SyncBoxScores(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Empty(t, db.gameBatting)
}

func TestSyncLinescores(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	ctx := context.Background()
	yankees := seedTeam(t, db, 147, "New York Yankees")
	dodgers := seedTeam(t, db, 119, "Los Angeles Dodgers")
	game := seedFinalGame(t, db, 745001, yankees, dodgers)

	ls := &client.Linescore{
		CurrentInning: intp(9),
		InningState:   "End",
		Innings: []client.LinescoreInning{
			{Num: 1, Home: client.LinescoreTotals{Runs: intp(2), Hits: intp(3), Errors: intp(0)}, Away: client.LinescoreTotals{Runs: intp(0), Hits: intp(1)}},
			{Num: 2, Home: client.LinescoreTotals{Runs: intp(0)}, Away: client.LinescoreTotals{Runs: intp(1)}},
		},
	}
	ls.Teams.Home = client.LinescoreTotals{Runs: intp(2), Hits: intp(8), Errors: intp(1)}
	ls.Teams.Away = client.LinescoreTotals{Runs: intp(1), Hits: intp(5), Errors: intp(0)}
	ls.Offense.First = &client.Ref{ID: 592450}
	api.linescores[745001] = ls

	res, err := in.SyncLinescores(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 1}, res)

	stored := db.games[745001]
	assert.Equal(t, int32(8), stored.HomeHits.Int32)
	assert.Equal(t, int32(1), stored.HomeErrors.Int32)
	assert.Equal(t, "End", stored.InningState.String)
	assert.True(t, stored.RunnerOnFirst)
	assert.False(t, stored.RunnerOnSecond)

	innings := db.innings[game.ID]
	require.Len(t, innings, 2)
	assert.Equal(t, int32(2), innings[0].HomeRuns.Int32)
	assert.False(t, innings[1].HomeHits.Valid)

	_, err = in.SyncLinescores(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, api.callCount("linescore"))
}

func TestSyncSabermetrics_AppliesGwar(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	ctx := context.Background()
	team := seedTeam(t, db, 119, "Los Angeles Dodgers")
	ohtani := seedPlayer(t, db, &models.Player{MlbID: 660271, FullName: "Shohei Ohtani", Position: models.NullString("DH")})
	glasnow := seedPlayer(t, db, &models.Player{MlbID: 607192, FullName: "Tyler Glasnow", Position: models.NullString("P")})

	_, err := db.stores().Stats.UpsertBatting(ctx, &models.BattingStats{
		PlayerID: ohtani.ID, TeamID: team.ID, Season: 2024, GameType: models.GameTypeRegular,
		PlateAppearances: sql.NullInt32{Int32: 636, Valid: true},
		StolenBases:      sql.NullInt32{Int32: 50, Valid: true},
		CaughtStealing:   sql.NullInt32{Int32: 10, Valid: true},
		Oaa:              sql.NullInt32{Int32: 5, Valid: true},
		GamesPlayed:      sql.NullInt32{Int32: 159, Valid: true},
	})
	require.NoError(t, err)
	_, err = db.stores().Stats.UpsertPitching(ctx, &models.PitchingStats{
		PlayerID: glasnow.ID, TeamID: team.ID, Season: 2024, GameType: models.GameTypeRegular,
		InningsPitched: decimal.NullDecimal{Decimal: decimal.RequireFromString("134.0"), Valid: true},
	})
	require.NoError(t, err)

	api.saber["660271:hitting"] = []byte(`{"stats":[{"splits":[{"stat":{"war":9.2,"woba":".430","wRcPlus":190}}]}]}`)
	api.saber["607192:pitching"] = []byte(`{"stats":[{"splits":[{"stat":{"war":3.1,"fip":"3.10","xfip":"3.25"}}]}]}`)

	res, err := in.SyncSabermetrics(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2}, res)

	bat := db.batting[statKey{ohtani.ID, team.ID, 2024}]
	assert.Equal(t, "0.43", bat.Woba.Decimal.String())
	assert.Equal(t, "190", bat.WrcPlus.Decimal.String())
	require.True(t, bat.Gwar.Total.Valid)
	assert.Equal(t, "8.0", bat.Gwar.Total.Decimal.StringFixed(1))

	pitch := db.pitching[statKey{glasnow.ID, team.ID, 2024}]
	assert.Equal(t, "3.1", pitch.Fip.Decimal.String())
	assert.Equal(t, "3.25", pitch.Xfip.Decimal.String())
	assert.True(t, pitch.Gwar.Total.Valid)
	assert.True(t, pitch.Gwar.Pitching.Valid)

	assert.Equal(t, 1, api.callCount("saber:hitting"))
	assert.Equal(t, 1, api.callCount("saber:pitching"), "Players are only queried for groups they have lines in")
}

func TestSyncSabermetrics_NoConstantsKeepsUpstreamValues(t *testing.T) {
	api := newFakeAPI()
	in, db := newTestIngester(api, nil)
	ctx := context.Background()
	team := seedTeam(t, db, 119, "Los Angeles Dodgers")
	p := seedPlayer(t, db, &models.Player{MlbID: 660271, FullName: "Shohei Ohtani"})
	_, err := db.stores().Stats.UpsertBatting(ctx, &models.BattingStats{PlayerID: p.ID, TeamID: team.ID, Season: 2023})
	require.NoError(t, err)
	api.saber["660271:hitting"] = []byte(`{"stats":[{"splits":[{"stat":{"war":6.0}}]}]}`)

	res, err := in.SyncSabermetrics(ctx, 2023)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	bat := db.batting[statKey{p.ID, team.ID, 2023}]
	assert.Equal(t, "6", bat.War.Decimal.String())
	assert.False(t, bat.Gwar.Total.Valid)
}

func seedLeaderboardLines(t *testing.T, db *memDB) (matched, unmatched *models.Player, teamID int) {
	t.Helper()
	ctx := context.Background()
	team := seedTeam(t, db, 119, "Los Angeles Dodgers")
	matched = seedPlayer(t, db, &models.Player{MlbID: 660271, FullName: "Shohei Ohtani", Position: models.NullString("DH")})
	unmatched = seedPlayer(t, db, &models.Player{MlbID: 111111, FullName: "Bench Player"})
	for _, p := range []*models.Player{matched, unmatched} {
		_, err := db.stores().Stats.UpsertBatting(ctx, &models.BattingStats{
			PlayerID: p.ID, TeamID: team.ID, Season: 2024,
			PlateAppearances: sql.NullInt32{Int32: 636, Valid: true},
			GamesPlayed:      sql.NullInt32{Int32: 159, Valid: true},
			Woba:             decimal.NullDecimal{Decimal: decimal.RequireFromString("0.430"), Valid: true},
		})
		require.NoError(t, err)
	}
	return matched, unmatched, team.ID
}

func TestSyncLeaderboards(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockLeaderboardFeed(ctrl)
	feed.EXPECT().FetchOAA(gomock.Any(), 2024).Return("player_id,outs_above_average\n660271,5\n", nil)
	feed.EXPECT().FetchExpectedStats(gomock.Any(), 2024).Return("player_id,est_ba,est_slg,est_woba\n660271,.312,.640,.441\n", nil)
	feed.EXPECT().FetchSprintSpeed(gomock.Any(), 2024).Return("player_id,sprint_speed\n660271,28.4\n", nil)

	in, db := newTestIngester(newFakeAPI(), feed)
	matched, unmatched, teamID := seedLeaderboardLines(t, db)

	res, err := in.SyncLeaderboards(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 1, Skipped: 1}, res)

	line := db.batting[statKey{matched.ID, teamID, 2024}]
	assert.Equal(t, int32(5), line.Oaa.Int32)
	assert.Equal(t, "0.312", line.Xba.Decimal.String())
	assert.Equal(t, "0.441", line.Xwoba.Decimal.String())
	assert.Equal(t, "28.4", line.SprintSpeed.Decimal.String())
	assert.True(t, line.Gwar.Total.Valid, "OAA should trigger a gWAR recomputation")
	assert.True(t, line.Gwar.Fielding.Valid)

	other := db.batting[statKey{unmatched.ID, teamID, 2024}]
	assert.False(t, other.Oaa.Valid)
	assert.False(t, other.Gwar.Total.Valid)
}

func TestSyncLeaderboards_PartialFeedFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockLeaderboardFeed(ctrl)
	feed.EXPECT().FetchOAA(gomock.Any(), 2024).Return("", errors.New("savant timeout"))
	feed.EXPECT().FetchExpectedStats(gomock.Any(), 2024).Return("player_id,est_ba\n660271,.312\n", nil)
	feed.EXPECT().FetchSprintSpeed(gomock.Any(), 2024).Return("player_id,sprint_speed\n", nil)

	in, db := newTestIngester(newFakeAPI(), feed)
	matched, _, teamID := seedLeaderboardLines(t, db)

	res, err := in.SyncLeaderboards(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	line := db.batting[statKey{matched.ID, teamID, 2024}]
	assert.False(t, line.Oaa.Valid)
	assert.Equal(t, "0.312", line.Xba.Decimal.String())
	assert.False(t, line.Gwar.Total.Valid, "gWAR is only recomputed when OAA changes")
}

func TestSyncLeaderboards_AllFeedsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockLeaderboardFeed(ctrl)
	feed.EXPECT().FetchOAA(gomock.Any(), gomock.Any()).Return("", errors.New("down"))
	feed.EXPECT().FetchExpectedStats(gomock.Any(), gomock.Any()).Return("", errors.New("down"))
	feed.EXPECT().FetchSprintSpeed(gomock.Any(), gomock.Any()).Return("", errors.New("down"))

	in, db := newTestIngester(newFakeAPI(), feed)
	seedLeaderboardLines(t, db)

	_, err := in.SyncLeaderboards(context.Background(), 2024)
	assert.ErrorContains(t, err, "failed to fetch leaderboards")
}

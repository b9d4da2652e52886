package client

// Response shapes of the MLB Stats API. Only the fields ingestion reads are declared.

type Ref struct {
	ID int `json:"id"`
}

type nameRef struct {
	Name string `json:"name"`
}

// Team is an entry of the /teams response
type Team struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Abbreviation    string  `json:"abbreviation"`
	LocationName    string  `json:"locationName"`
	Venue           nameRef `json:"venue"`
	League          nameRef `json:"league"`
	Division        nameRef `json:"division"`
	FirstYearOfPlay string  `json:"firstYearOfPlay"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

// Position is a player's primary or roster position
type Position struct {
	Abbreviation string `json:"abbreviation"`
	Type         string `json:"type"`
}

// RosterEntry is an entry of the /teams/{id}/roster response
type RosterEntry struct {
	Person struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"person"`
	JerseyNumber string   `json:"jerseyNumber"`
	Position     Position `json:"position"`
	Status       struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"status"`
}

type rosterResponse struct {
	Roster []RosterEntry `json:"roster"`
}

type codeRef struct {
	Code string `json:"code"`
}

// Person is the biographical record returned by /people/{id}
type Person struct {
	ID              int      `json:"id"`
	FullName        string   `json:"fullName"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	PrimaryNumber   string   `json:"primaryNumber"`
	PrimaryPosition Position `json:"primaryPosition"`
	BatSide         codeRef  `json:"batSide"`
	PitchHand       codeRef  `json:"pitchHand"`
	BirthDate       string   `json:"birthDate"`
	Height          string   `json:"height"`
	Weight          *int     `json:"weight"`
	Active          bool     `json:"active"`
}

type peopleResponse struct {
	People []Person `json:"people"`
}

// ScheduleTeam is one side of a scheduled game
type ScheduleTeam struct {
	Score           *int `json:"score"`
	Team            Ref  `json:"team"`
	ProbablePitcher *Ref `json:"probablePitcher"`
}

// ScheduleGame is a game listed by /schedule
type ScheduleGame struct {
	GamePk   int    `json:"gamePk"`
	GameDate string `json:"gameDate"`
	GameType string `json:"gameType"`
	Season   string `json:"season"`
	Status   struct {
		AbstractGameState string `json:"abstractGameState"`
		DetailedState     string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Home ScheduleTeam `json:"home"`
		Away ScheduleTeam `json:"away"`
	} `json:"teams"`
	Venue            nameRef `json:"venue"`
	DayNight         string  `json:"dayNight"`
	ScheduledInnings *int    `json:"scheduledInnings"`
}

type scheduleResponse struct {
	Dates []struct {
		Games []ScheduleGame `json:"games"`
	} `json:"dates"`
}

// StatLine carries both hitting and pitching fields; rate stats arrive as strings
type StatLine struct {
	GamesPlayed      *int   `json:"gamesPlayed"`
	GamesStarted     *int   `json:"gamesStarted"`
	PlateAppearances *int   `json:"plateAppearances"`
	AtBats           *int   `json:"atBats"`
	Runs             *int   `json:"runs"`
	Hits             *int   `json:"hits"`
	Doubles          *int   `json:"doubles"`
	Triples          *int   `json:"triples"`
	HomeRuns         *int   `json:"homeRuns"`
	Rbi              *int   `json:"rbi"`
	StolenBases      *int   `json:"stolenBases"`
	CaughtStealing   *int   `json:"caughtStealing"`
	BaseOnBalls      *int   `json:"baseOnBalls"`
	StrikeOuts       *int   `json:"strikeOuts"`
	Avg              string `json:"avg"`
	Obp              string `json:"obp"`
	Slg              string `json:"slg"`
	Ops              string `json:"ops"`
	Babip            string `json:"babip"`

	Wins           *int   `json:"wins"`
	Losses         *int   `json:"losses"`
	Saves          *int   `json:"saves"`
	InningsPitched string `json:"inningsPitched"`
	EarnedRuns     *int   `json:"earnedRuns"`
	Era            string `json:"era"`
	Whip           string `json:"whip"`
}

// StatSplit is one season/team split of a player's stats
type StatSplit struct {
	Season string   `json:"season"`
	Team   *Ref     `json:"team"`
	Stat   StatLine `json:"stat"`
}

type statsResponse struct {
	Stats []struct {
		Splits []StatSplit `json:"splits"`
	} `json:"stats"`
}

// TeamRecord is a team's entry in /standings. Records is kept undecoded for split lookups.
type TeamRecord struct {
	Team              Ref    `json:"team"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	WinningPercentage string `json:"winningPercentage"`
	GamesBack         string `json:"gamesBack"`
	WildCardGamesBack string `json:"wildCardGamesBack"`
	DivisionRank      string `json:"divisionRank"`
	LeagueRank        string `json:"leagueRank"`
	WildCardRank      string `json:"wildCardRank"`
	RunsScored        *int   `json:"runsScored"`
	RunsAllowed       *int   `json:"runsAllowed"`
	RunDifferential   *int   `json:"runDifferential"`
	Streak            struct {
		StreakCode string `json:"streakCode"`
	} `json:"streak"`
	Records any `json:"records"`
}

type standingsResponse struct {
	Records []struct {
		TeamRecords []TeamRecord `json:"teamRecords"`
	} `json:"records"`
}

// LinescoreTotals are runs, hits and errors for one team
type LinescoreTotals struct {
	Runs   *int `json:"runs"`
	Hits   *int `json:"hits"`
	Errors *int `json:"errors"`
}

// LinescoreInning is one inning of a linescore
type LinescoreInning struct {
	Num  int             `json:"num"`
	Home LinescoreTotals `json:"home"`
	Away LinescoreTotals `json:"away"`
}

// Linescore is the /game/{pk}/linescore response
type Linescore struct {
	CurrentInning    *int              `json:"currentInning"`
	InningState      string            `json:"inningState"`
	ScheduledInnings *int              `json:"scheduledInnings"`
	Innings          []LinescoreInning `json:"innings"`
	Teams            struct {
		Home LinescoreTotals `json:"home"`
		Away LinescoreTotals `json:"away"`
	} `json:"teams"`
	Offense struct {
		First  *Ref `json:"first"`
		Second *Ref `json:"second"`
		Third  *Ref `json:"third"`
	} `json:"offense"`
}

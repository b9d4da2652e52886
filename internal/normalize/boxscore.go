package normalize

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// ErrInvalidBoxScore is returned when the payload has no teams section
var ErrInvalidBoxScore = errors.New("invalid box score payload")

// BoxScoreSide holds one team's player lines
type BoxScoreSide struct {
	TeamMlbID int
	Batting   []BattingLine
	Pitching  []PitchingLine
}

// BattingLine is a player's batting for one game
type BattingLine struct {
	PlayerMlbID  int
	FullName     string
	BattingOrder *int
	AtBats       *int
	Runs         *int
	Hits         *int
	Doubles      *int
	Triples      *int
	HomeRuns     *int
	Rbi          *int
	Walks        *int
	Strikeouts   *int
	StolenBases  *int
	LeftOnBase   *int
}

// PitchingLine is a player's pitching for one game
type PitchingLine struct {
	PlayerMlbID     int
	FullName        string
	IsStarter       bool
	InningsPitched  *decimal.Decimal
	HitsAllowed     *int
	RunsAllowed     *int
	EarnedRuns      *int
	Walks           *int
	Strikeouts      *int
	HomeRunsAllowed *int
	PitchCount      *int
}

// ParseBoxScore extracts player lines for both teams. Players are keyed "ID<mlbId>" in the payload.
// A batting line exists when atBats is present, a pitching line when inningsPitched is present, and the
// first listed pitcher is the starter.
func ParseBoxScore(payload []byte) (home, away BoxScoreSide, err error) {
	if !gjson.ValidBytes(payload) {
		return home, away, ErrInvalidBoxScore
	}
	teams := gjson.GetBytes(payload, "teams")
	if !teams.IsObject() {
		return home, away, ErrInvalidBoxScore
	}
	return parseSide(teams.Get("home")), parseSide(teams.Get("away")), nil
}

func parseSide(side gjson.Result) BoxScoreSide {
	out := BoxScoreSide{TeamMlbID: int(side.Get("team.id").Int())}
	starter := side.Get("pitchers.0").Int()

	side.Get("players").ForEach(func(key, player gjson.Result) bool {
		id := playerID(key.String(), player)
		if id == 0 {
			return true
		}
		name := player.Get("person.fullName").String()

		if batting := player.Get("stats.batting"); batting.Get("atBats").Exists() {
			out.Batting = append(out.Batting, BattingLine{
				PlayerMlbID:  id,
				FullName:     name,
				BattingOrder: IntField(player.Get("battingOrder")),
				AtBats:       IntField(batting.Get("atBats")),
				Runs:         IntField(batting.Get("runs")),
				Hits:         IntField(batting.Get("hits")),
				Doubles:      IntField(batting.Get("doubles")),
				Triples:      IntField(batting.Get("triples")),
				HomeRuns:     IntField(batting.Get("homeRuns")),
				Rbi:          IntField(batting.Get("rbi")),
				Walks:        IntField(batting.Get("baseOnBalls")),
				Strikeouts:   IntField(batting.Get("strikeOuts")),
				StolenBases:  IntField(batting.Get("stolenBases")),
				LeftOnBase:   IntField(batting.Get("leftOnBase")),
			})
		}

		if pitching := player.Get("stats.pitching"); pitching.Get("inningsPitched").Exists() {
			out.Pitching = append(out.Pitching, PitchingLine{
				PlayerMlbID:     id,
				FullName:        name,
				IsStarter:       starter != 0 && int64(id) == starter,
				InningsPitched:  DecimalField(pitching.Get("inningsPitched")),
				HitsAllowed:     IntField(pitching.Get("hits")),
				RunsAllowed:     IntField(pitching.Get("runs")),
				EarnedRuns:      IntField(pitching.Get("earnedRuns")),
				Walks:           IntField(pitching.Get("baseOnBalls")),
				Strikeouts:      IntField(pitching.Get("strikeOuts")),
				HomeRunsAllowed: IntField(pitching.Get("homeRuns")),
				PitchCount:      IntField(pitching.Get("numberOfPitches")),
			})
		}
		return true
	})
	return out
}

func playerID(key string, player gjson.Result) int {
	if id := player.Get("person.id").Int(); id != 0 {
		return int(id)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(key, "ID"))
	if err != nil {
		return 0
	}
	return id
}

package echoapi

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/class"
	"github.com/trezcool/gyaanbuddy/core/mission"
	"github.com/trezcool/gyaanbuddy/core/question"
	"github.com/trezcool/gyaanbuddy/core/report"
	"github.com/trezcool/gyaanbuddy/core/student"
	"github.com/trezcool/gyaanbuddy/core/subject"
	"github.com/trezcool/gyaanbuddy/core/suggestion"
	"github.com/trezcool/gyaanbuddy/core/teacher"
)

//go:embed fixtures/school.json
var schoolFixtures []byte

var passwordCost = bcrypt.DefaultCost // mockable

// account is a user able to log in to the mock backend.
type account struct {
	auth.User
	Password     string `json:"password,omitempty"` // fixtures only
	PasswordHash []byte `json:"-"`
}

func (a *account) setPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), passwordCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	a.PasswordHash = hash
	a.Password = ""
	return nil
}

func (a account) checkPassword(pwd string) bool {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd)) == nil
}

// DB is the state of the mock backend.
type DB struct {
	accounts    *table[account]
	teachers    *table[teacher.Teacher]
	students    *table[student.Student]
	classes     *table[class.Class]
	subjects    *table[subject.Subject]
	questions   *table[question.Question]
	missions    *table[mission.Mission]
	reports     *table[report.Report]
	suggestions *table[suggestion.Suggestion]
	overview    report.Overview
}

type fixtures struct {
	Accounts    []account               `json:"accounts"`
	Teachers    []teacher.Teacher       `json:"teachers"`
	Students    []student.Student       `json:"students"`
	Classes     []class.Class           `json:"classes"`
	Subjects    []subject.Subject       `json:"subjects"`
	Questions   []question.Question     `json:"questions"`
	Missions    []mission.Mission       `json:"missions"`
	Reports     []report.Report         `json:"reports"`
	Suggestions []suggestion.Suggestion `json:"suggestions"`
	Overview    report.Overview         `json:"overview"`
}

// NewDB loads a DB from JSON fixtures.
func NewDB(data []byte) (*DB, error) {
	var fx fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, errors.Wrap(err, "decoding fixtures")
	}
	for i := range fx.Accounts {
		if err := fx.Accounts[i].setPassword(fx.Accounts[i].Password); err != nil {
			return nil, errors.Wrapf(err, "seeding account %s", fx.Accounts[i].Email)
		}
	}
	return &DB{
		accounts:    newTable(fx.Accounts...),
		teachers:    newTable(fx.Teachers...),
		students:    newTable(fx.Students...),
		classes:     newTable(fx.Classes...),
		subjects:    newTable(fx.Subjects...),
		questions:   newTable(fx.Questions...),
		missions:    newTable(fx.Missions...),
		reports:     newTable(fx.Reports...),
		suggestions: newTable(fx.Suggestions...),
		overview:    fx.Overview,
	}, nil
}

// SeedDB loads the bundled school fixtures.
func SeedDB() (*DB, error) {
	return NewDB(schoolFixtures)
}

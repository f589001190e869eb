package domain

import "strings"

// EducationLevel segments items by school level.
type EducationLevel string

const (
	LevelPreschool  EducationLevel = "Preschool/Kindergarten"
	LevelElementary EducationLevel = "Elementary"
	LevelJuniorHigh EducationLevel = "Junior High"
	LevelSeniorHigh EducationLevel = "Senior High"
	LevelCollege    EducationLevel = "College"
)

// EducationLevels lists the enumeration in display order.
var EducationLevels = []EducationLevel{
	LevelPreschool,
	LevelElementary,
	LevelJuniorHigh,
	LevelSeniorHigh,
	LevelCollege,
}

var educationLevelAliases = map[string]EducationLevel{
	"preschool":              LevelPreschool,
	"kindergarten":           LevelPreschool,
	"preschool/kindergarten": LevelPreschool,
	"elementary":             LevelElementary,
	"junior high":            LevelJuniorHigh,
	"junior high school":     LevelJuniorHigh,
	"senior high":            LevelSeniorHigh,
	"senior high school":     LevelSeniorHigh,
	"college":                LevelCollege,
}

// ParseEducationLevel normalizes legacy and user-supplied spellings.
func ParseEducationLevel(raw string) (EducationLevel, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	level, ok := educationLevelAliases[key]
	return level, ok
}

// Order returns the position of the level in EducationLevels, or len(EducationLevels)
// for unknown values so they sort last.
func (l EducationLevel) Order() int {
	for i, level := range EducationLevels {
		if level == l {
			return i
		}
	}
	return len(EducationLevels)
}

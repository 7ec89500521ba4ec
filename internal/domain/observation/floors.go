package observation

// StandardFloors is the closed set of floor labels observations are
// normalized onto. The oracle is instructed to map free-text floor input to
// one of these; when it cannot, the raw user text is carried instead, so
// Record.Floor is not guaranteed to be a member.
var StandardFloors = []string{
	"basement 4", "basement 3", "basement 2", "basement 1", "groundfloor",
	"first floor", "second floor", "third floor", "forth floor", "fifth floor",
	"sixth floor", "seventh floor", "eighth floor", "nineth floor", "roof top",
}

// ResponsibleRoles is the closed set of roles a corrective action can be
// assigned to.
var ResponsibleRoles = []string{
	"chief engineer",
	"head of IT",
	"director of marketing",
	"director of rooms",
	"director of p&c",
	"director of f&b",
	"director of sales",
	"financial controller",
	"executive sous chef",
}

func IsStandardFloor(floor string) bool {
	for _, f := range StandardFloors {
		if f == floor {
			return true
		}
	}
	return false
}

func IsResponsibleRole(role string) bool {
	for _, r := range ResponsibleRoles {
		if r == role {
			return true
		}
	}
	return false
}

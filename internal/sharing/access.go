package sharing

// AccessLevel is a permission tier a grant extends to its grantee.
type AccessLevel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

const (
	AccessViewer    int64 = 1
	AccessCommenter int64 = 2
	AccessEditor    int64 = 3
)

var accessLevels = []AccessLevel{
	{ID: AccessViewer, Name: "Viewer", Description: "Can view and download"},
	{ID: AccessCommenter, Name: "Commenter", Description: "Can view, download and comment"},
	{ID: AccessEditor, Name: "Editor", Description: "Can view, download, comment and edit"},
}

// AccessLevels returns a copy of the registry in id order.
func AccessLevels() []AccessLevel {
	levels := make([]AccessLevel, len(accessLevels))
	copy(levels, accessLevels)
	return levels
}

func LookupAccessLevel(id int64) (AccessLevel, bool) {
	for _, level := range accessLevels {
		if level.ID == id {
			return level, true
		}
	}
	return AccessLevel{}, false
}

func IsValidAccessLevel(id int64) bool {
	_, ok := LookupAccessLevel(id)
	return ok
}

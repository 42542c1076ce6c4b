package catalog

// Avatar describes a talking-head character the Voice Live service can render.
// Character and Style are the values sent upstream; AvatarID is what clients
// reference.
type Avatar struct {
	AvatarID       string   `json:"avatar_id"`
	Provider       string   `json:"provider"`
	DisplayName    string   `json:"display_name"`
	Character      string   `json:"character"`
	Style          string   `json:"style,omitempty"`
	Description    string   `json:"description"`
	RecommendedUse string   `json:"recommended_use,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ThumbnailURL   string   `json:"thumbnail_url,omitempty"`
}

var avatarOptions = []Avatar{
	{
		AvatarID:     "harry-business",
		Provider:     "azure",
		DisplayName:  "Harry (business)",
		Character:    "harry",
		Style:        "business",
		Description:  "Harry in business attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/harry/harry-business-thumbnail.png",
	},
	{
		AvatarID:     "harry-casual",
		Provider:     "azure",
		DisplayName:  "Harry (casual)",
		Character:    "harry",
		Style:        "casual",
		Description:  "Harry in casual attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/harry/harry-casual-thumbnail.png",
	},
	{
		AvatarID:     "harry-youthful",
		Provider:     "azure",
		DisplayName:  "Harry (youthful)",
		Character:    "harry",
		Style:        "youthful",
		Description:  "Harry in a youthful style.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/harry/harry-youthful-thumbnail.png",
	},
	{
		AvatarID:     "jeff-business",
		Provider:     "azure",
		DisplayName:  "Jeff (business)",
		Character:    "jeff",
		Style:        "business",
		Description:  "Jeff in business attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/jeff/jeff-business-thumbnail-bg.png",
	},
	{
		AvatarID:     "jeff-formal",
		Provider:     "azure",
		DisplayName:  "Jeff (formal)",
		Character:    "jeff",
		Style:        "formal",
		Description:  "Jeff in formal attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/jeff/jeff-formal-thumbnail-bg.png",
	},
	{
		AvatarID:     "lisa-casual-sitting",
		Provider:     "azure",
		DisplayName:  "Lisa (casual-sitting)",
		Character:    "lisa",
		Style:        "casual-sitting",
		Description:  "Lisa seated, in casual attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/lisa/lisa-casual-sitting-thumbnail.png",
	},
	{
		AvatarID:     "lori-casual",
		Provider:     "azure",
		DisplayName:  "Lori (casual)",
		Character:    "lori",
		Style:        "casual",
		Description:  "Lori in casual attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/lori/lori-casual-thumbnail.png",
	},
	{
		AvatarID:     "lori-graceful",
		Provider:     "azure",
		DisplayName:  "Lori (graceful)",
		Character:    "lori",
		Style:        "graceful",
		Description:  "Lori in a graceful style.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/lori/lori-graceful-thumbnail.png",
	},
	{
		AvatarID:     "lori-formal",
		Provider:     "azure",
		DisplayName:  "Lori (formal)",
		Character:    "lori",
		Style:        "formal",
		Description:  "Lori in formal attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/lori/lori-formal-thumbnail.png",
	},
	{
		AvatarID:     "max-business",
		Provider:     "azure",
		DisplayName:  "Max (business)",
		Character:    "max",
		Style:        "business",
		Description:  "Max in business attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/max/max-business-thumbnail.png",
	},
	{
		AvatarID:     "max-casual",
		Provider:     "azure",
		DisplayName:  "Max (casual)",
		Character:    "max",
		Style:        "casual",
		Description:  "Max in casual attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/max/max-casual-thumbnail.png",
	},
	{
		AvatarID:     "max-formal",
		Provider:     "azure",
		DisplayName:  "Max (formal)",
		Character:    "max",
		Style:        "formal",
		Description:  "Max in formal attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/max/max-formal-thumbnail.png",
	},
	{
		AvatarID:     "meg-formal",
		Provider:     "azure",
		DisplayName:  "Meg (formal)",
		Character:    "meg",
		Style:        "formal",
		Description:  "Meg in formal attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/meg/meg-formal-thumbnail.png",
	},
	{
		AvatarID:     "meg-casual",
		Provider:     "azure",
		DisplayName:  "Meg (casual)",
		Character:    "meg",
		Style:        "casual",
		Description:  "Meg in casual attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/meg/meg-casual-thumbnail.png",
	},
	{
		AvatarID:     "meg-business",
		Provider:     "azure",
		DisplayName:  "Meg (business)",
		Character:    "meg",
		Style:        "business",
		Description:  "Meg in business attire.",
		Tags:         []string{"Azure"},
		ThumbnailURL: "https://ai.azure.com/speechassetscache/avatar/meg/meg-business-thumbnail.png",
	},
}

// ListAvatars returns every avatar option.
func ListAvatars() []Avatar {
	out := make([]Avatar, len(avatarOptions))
	copy(out, avatarOptions)
	return out
}

// GetAvatar looks up an avatar by ID.
func GetAvatar(avatarID string) (Avatar, bool) {
	for _, avatar := range avatarOptions {
		if avatar.AvatarID == avatarID {
			return avatar, true
		}
	}
	return Avatar{}, false
}

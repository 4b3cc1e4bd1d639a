package catalog

import "crimson-db/internal/db"

const unknownName = "Unknown"

// Defaults used when a join row arrives without its nested record.
var (
	missingCharacter = db.Character{
		CharacterName: unknownName,
	}
	missingContributor = db.Contributor{
		ContributorName: unknownName,
	}
	missingRole = db.Role{
		RoleName: unknownName,
	}
)

func flattenCharacter(link db.GameCharacter) CharacterSummary {
	character := missingCharacter
	if link.Character != nil {
		character = *link.Character
	}
	return CharacterSummary{
		CharacterID:   link.CharacterID,
		CharacterName: character.CharacterName,
		Backstory:     character.Backstory,
		EnglishVA:     character.EnglishVA,
		JapaneseVA:    character.JapaneseVA,
		MotionCapture: character.MotionCapture,
		SpriteURL:     character.SpriteURL,
	}
}

func flattenContributor(link db.GameContributor) ContributorSummary {
	contributor := missingContributor
	if link.Contributor != nil {
		contributor = *link.Contributor
	}
	role := missingRole
	if link.Role != nil {
		role = *link.Role
	}
	return ContributorSummary{
		ContributorID:   link.ContributorID,
		ContributorName: contributor.ContributorName,
		Specialization:  contributor.Specialization,
		RoleID:          link.RoleID,
		RoleName:        role.RoleName,
	}
}

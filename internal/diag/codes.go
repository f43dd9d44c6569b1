package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Каталог подсказок (hints.toml)
	CatInfo          Code = 1000
	CatMissingSource Code = 1001
	CatMalformed     Code = 1002
	CatMissingHint   Code = 1003
	CatUnknownField  Code = 1004
	CatKeyCollision  Code = 1005
	CatEscapedKey    Code = 1006
	CatEmptyHint     Code = 1007

	// Рендеринг тел подсказок
	RndInfo       Code = 2000
	RndFailed     Code = 2001
	RndInvalidUTF Code = 2002

	// Кэш подсказок (hints.json)
	CchInfo        Code = 3000
	CchWriteFailed Code = 3001

	// Ссылки в документах
	RefInfo        Code = 4000
	RefMissingHint Code = 4001
	RefEmptyLabel  Code = 4002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:      "unknown error",
		CatInfo:          "catalog information",
		CatMissingSource: "hint catalog not found",
		CatMalformed:     "hint catalog is malformed",
		CatMissingHint:   "catalog entry has no hint field",
		CatUnknownField:  "unknown field in catalog entry",
		CatKeyCollision:  "hint keys collide after unicode normalization",
		CatEscapedKey:    "catalog key starts with the escape prefix and can never be referenced",
		CatEmptyHint:     "hint body is empty",
		RndInfo:          "render information",
		RndFailed:        "hint body failed to render",
		RndInvalidUTF:    "hint body is not valid UTF-8",
		CchInfo:          "cache information",
		CchWriteFailed:   "hint cache could not be written",
		RefInfo:          "reference information",
		RefMissingHint:   "reference to a hint missing from the catalog",
		RefEmptyLabel:    "hint reference has an empty label",
		ObsInfo:          "observability information",
		ObsTimings:       "pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CAT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RND%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CCH%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

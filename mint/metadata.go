package mint

import "fmt"

// Attribute — одна строка trait-а в метаданных значка.
type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

type MetadataProperties struct {
	Category string         `json:"category"`
	Files    []MetadataFile `json:"files"`
}

// Metadata — документ метаданных значка чемпиона (Metaplex-совместимый).
type Metadata struct {
	Name        string             `json:"name"`
	Symbol      string             `json:"symbol"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Attributes  []Attribute        `json:"attributes"`
	Properties  MetadataProperties `json:"properties"`
}

const badgeSymbol = "CHAMP"

// BuildMetadata собирает документ метаданных для значка чемпиона.
// Чистая функция: одинаковые входы дают байт-в-байт одинаковый документ.
// Валидация входов — забота вызывающего, пустые строки проходят как есть.
// serialID различает повторные попытки минта одного победителя и всегда
// попадает в атрибуты строкой.
func BuildMetadata(tournamentTitle, month string, year int, teamName, badgeImageURL, serialID string) Metadata {
	return Metadata{
		Name:        fmt.Sprintf("%s Champion - %s %d", tournamentTitle, month, year),
		Symbol:      badgeSymbol,
		Description: fmt.Sprintf("Champion Badge for %s in %s (%s %d)", teamName, tournamentTitle, month, year),
		Image:       badgeImageURL,
		Attributes: []Attribute{
			{TraitType: "Tournament", Value: tournamentTitle},
			{TraitType: "Month", Value: month},
			{TraitType: "Year", Value: year},
			{TraitType: "Team", Value: teamName},
			{TraitType: "Badge Serial ID", Value: serialID},
		},
		Properties: MetadataProperties{
			Category: "image",
			Files: []MetadataFile{
				{URI: badgeImageURL, Type: "image/png"},
			},
		},
	}
}

package store

import (
	"bufio"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// maxCandidateLine bounds a single NDJSON record. Résumés are large but a
// record over this size indicates a corrupt store.
const maxCandidateLine = 4 << 20

// Candidate is one profile from the line-delimited candidate store.
type Candidate struct {
	ID                string
	FullName          string
	Summary           string
	Skills            string
	AreaOfExpertise   string
	ProfessionalLevel string
	Education         string
	EnglishLevel      string
	CVPT              string
	CVEN              string
}

// Text concatenates the free-text fields used as the classification unit:
// professional summary, skills, and the résumé in both languages.
func (c *Candidate) Text() string {
	return joinNonEmpty(c.Summary, c.Skills, c.CVPT, c.CVEN)
}

// HeuristicText extends Text with the profile fields the keyword scorer also
// inspects: area, level, education and english level.
func (c *Candidate) HeuristicText() string {
	return joinNonEmpty(c.Summary, c.Skills, c.AreaOfExpertise, c.ProfessionalLevel,
		c.Education, c.EnglishLevel, c.CVPT, c.CVEN)
}

// FetchCandidates scans the NDJSON candidate store and returns the records
// whose id is in the requested set. The store is streamed line by line and
// never materialized in full; ids without a matching line are simply absent
// from the result. The scan stops early once every requested id is found.
func FetchCandidates(path string, ids map[string]struct{}) (map[string]*Candidate, error) {
	found := make(map[string]*Candidate, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening candidates %q: %v", ErrUnavailable, path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxCandidateLine)

	for scanner.Scan() {
		line := scanner.Bytes()
		// Probe the id before unmarshalling the whole record.
		id := gjson.GetBytes(line, "codigo_candidato").String()
		if _, wanted := ids[id]; !wanted {
			continue
		}

		doc := gjson.ParseBytes(line)
		found[id] = &Candidate{
			ID:                id,
			FullName:          textAt(doc, "informacoes_pessoais.nome_completo"),
			Summary:           textAt(doc, "informacoes_profissionais.resumo_profissional"),
			Skills:            textAt(doc, "informacoes_profissionais.conhecimentos"),
			AreaOfExpertise:   textAt(doc, "informacoes_profissionais.area_de_atuacao"),
			ProfessionalLevel: textAt(doc, "informacoes_profissionais.nivel_profissional"),
			Education:         textAt(doc, "formacao_e_idiomas.formacao"),
			EnglishLevel:      textAt(doc, "formacao_e_idiomas.nivel_ingles"),
			CVPT:              textAt(doc, "cv_pt"),
			CVEN:              textAt(doc, "cv_en"),
		}

		if len(found) == len(ids) {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning candidates %q: %v", ErrUnavailable, path, err)
	}

	return found, nil
}

// IDSet normalizes a list of candidate ids into a set.
func IDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

package services

import (
	"fmt"
	"strconv"
	"strings"

	"commuterhythm/internal/config"
	"commuterhythm/internal/models"
)

// BuildPrompt renders the editorial instruction for one issue. The theme is
// quoted so that stray quotes in user input cannot end the instruction early.
func BuildPrompt(theme string, curation *config.CurationConfig) string {
	if curation == nil {
		curation = config.DefaultCurationConfig()
	}
	total := curation.SongCount
	korean := curation.KoreanCount
	international := curation.InternationalCount()

	var b strings.Builder
	b.WriteString("당신은 세계적인 음악 큐레이터이자 매거진 에디터입니다.\n")
	fmt.Fprintf(&b, "사용자가 입력한 테마: %q 에 맞춰 %s에 듣기 좋은 음악 %d곡을 추천해주세요.\n\n", theme, curation.Occasion, total)
	b.WriteString("규칙:\n")
	fmt.Fprintf(&b, "1. 정확히 %d곡을 선정하세요. 첫 번째 곡은 이번 호의 커버 스토리입니다.\n", total)
	fmt.Fprintf(&b, "2. 한국어 노래(K-pop 포함) %d곡, 해외 노래(Pop/Rock 등) %d곡으로 비율을 정확히 %d:%d로 맞추세요.\n", korean, international, korean, international)
	b.WriteString("3. 각 노래가 왜 이 테마와 상황에 어울리는지 감각적인 에디터의 문체로 한 문장씩 설명해주세요.\n")
	b.WriteString("4. 노래 제목과 가수 이름은 정확해야 합니다.\n")
	fmt.Fprintf(&b, "5. origin은 한국어 노래면 %q, 해외 노래면 %q 로 표기하세요.\n", models.OriginKorean, models.OriginInternational)
	b.WriteString("6. videoId에는 검색으로 실제 존재를 확인한 YouTube 공식 영상의 11자리 ID만 넣으세요. ")
	b.WriteString("확인하지 못했다면 절대 추측하거나 만들어내지 말고 빈 문자열(\"\")을 넣으세요.\n")

	return b.String()
}

// RecommendationSchema is the structured output contract sent with every request
func RecommendationSchema(songCount int) *GeminiSchema {
	song := &GeminiSchema{
		Type: "OBJECT",
		Properties: map[string]*GeminiSchema{
			"title":  {Type: "STRING"},
			"artist": {Type: "STRING"},
			"reason": {Type: "STRING", Description: "One sensory, editorial sentence"},
			"origin": {
				Type:        "STRING",
				Description: "Korean or International",
				Enum:        []string{string(models.OriginKorean), string(models.OriginInternational)},
			},
			"videoId": {
				Type:        "STRING",
				Description: "Verified 11 character YouTube video id, or an empty string when unknown",
			},
		},
		PropertyOrdering: []string{"title", "artist", "reason", "origin", "videoId"},
		Required:         []string{"title", "artist", "reason", "origin", "videoId"},
	}

	list := &GeminiSchema{Type: "ARRAY", Items: song}
	if songCount > 0 {
		list.MinItems = strconv.Itoa(songCount)
		list.MaxItems = strconv.Itoa(songCount)
	}

	return &GeminiSchema{
		Type:       "OBJECT",
		Properties: map[string]*GeminiSchema{"recommendations": list},
		Required:   []string{"recommendations"},
	}
}

package triage

import "strings"

// Vietnamese writes one syllable per space-separated cluster, so a
// "word" is frequently two or three clusters ("ô nhiễm", "khiếu nại").
// Segment groups syllables into words by greedy longest match against a
// compound lexicon; anything not in the lexicon stays a single-syllable
// token. The lexicon covers the civic vocabulary the rule dictionaries
// draw from.
const maxCompoundSyllables = 4

var compoundLexicon = buildCompoundLexicon([]string{
	"phản ánh", "kiến nghị", "góp ý", "đề xuất", "đề nghị", "báo cáo",
	"khiếu nại", "tố cáo", "khiếu kiện", "tố giác", "khiếu tố",
	"giải quyết", "xem xét", "xử lý", "bồi thường", "đền bù",
	"trách nhiệm", "kỷ luật", "truy cứu", "quyết định", "quy định",
	"quy trình", "vi phạm", "sai phạm", "thiệt hại", "oan sai",
	"hư hỏng", "xuống cấp", "ô nhiễm", "trật tự", "vệ sinh",
	"ùn tắc", "ngập nước", "mất điện", "mất nước", "an toàn",
	"nguy hiểm", "hiện trạng", "tình trạng", "tình hình", "thông báo",
	"hỏa hoạn", "cháy nổ", "chập điện", "điện giật", "cứu hỏa",
	"tử vong", "tai nạn", "tính mạng", "thương tích", "nhập viện",
	"cấp cứu", "sạt lở", "lũ quét", "ngập lụt", "động đất",
	"độc hại", "nguy hại", "dịch bệnh", "nhiễm độc", "hóa chất",
	"ma túy", "vũ khí", "băng nhóm", "tội phạm", "đe dọa",
	"hành hung", "bạo lực", "trấn lột", "cướp giật", "ẩu đả",
	"xô xát", "đâm chém", "tham nhũng", "tiêu cực", "trục lợi",
	"biển thủ", "khẩn cấp", "khu vực", "cộng đồng", "ảnh hưởng",
	"nghiêm trọng", "sửa chữa", "nâng cấp", "ổ gà", "trơn trượt",
	"rác thải", "nước thải", "mùi hôi", "lấn chiếm", "xây dựng",
	"chậm trễ", "thái độ", "hồ sơ", "đường sá", "đèn đường",
	"chiếu sáng", "cây xanh", "người dân", "cán bộ", "dân cư",
})

func buildCompoundLexicon(compounds []string) map[string]bool {
	lex := make(map[string]bool, len(compounds))
	for _, c := range compounds {
		lex[c] = true
	}
	return lex
}

// Segment splits normalized text into word tokens, merging known
// compounds. Returns nil for empty input so callers can fall back to
// the unsegmented text.
func Segment(text string) []string {
	syllables := strings.Fields(text)
	if len(syllables) == 0 {
		return nil
	}

	var tokens []string
	for i := 0; i < len(syllables); {
		matched := 1
		limit := maxCompoundSyllables
		if rest := len(syllables) - i; rest < limit {
			limit = rest
		}
		// Longest match wins.
		for n := limit; n >= 2; n-- {
			candidate := strings.Join(syllables[i:i+n], " ")
			if compoundLexicon[candidate] {
				tokens = append(tokens, candidate)
				matched = n
				break
			}
		}
		if matched == 1 {
			tokens = append(tokens, syllables[i])
		}
		i += matched
	}
	return tokens
}

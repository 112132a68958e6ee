package triage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryRules holds the phrase dictionaries for one category tier.
// StrongPatterns weigh more than plain Keywords.
type CategoryRules struct {
	StrongPatterns []string `yaml:"strong_patterns"`
	Keywords       []string `yaml:"keywords"`
}

// KeywordRules maps both category tags to their dictionaries.
type KeywordRules struct {
	Grievance CategoryRules `yaml:"khieu_nai"`
	Report    CategoryRules `yaml:"phan_anh"`
}

// SeverityRules holds the phrase lists for the severity scan.
type SeverityRules struct {
	HighPatterns   []string `yaml:"high_patterns"`
	MediumPatterns []string `yaml:"medium_patterns"`
}

// RuleSet is the full static rule configuration. Built once at
// classifier construction and read-only afterwards.
type RuleSet struct {
	Keyword  KeywordRules  `yaml:"keyword"`
	Severity SeverityRules `yaml:"severity"`
}

// LoadRuleSet reads a YAML rules file. Used to override the built-in
// dictionaries without a rebuild.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) validate() error {
	if len(rs.Keyword.Grievance.StrongPatterns) == 0 && len(rs.Keyword.Grievance.Keywords) == 0 {
		return fmt.Errorf("rules file has no khieu_nai dictionary")
	}
	if len(rs.Keyword.Report.StrongPatterns) == 0 && len(rs.Keyword.Report.Keywords) == 0 {
		return fmt.Errorf("rules file has no phan_anh dictionary")
	}
	return nil
}

// DefaultRuleSet returns the built-in dictionaries.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Keyword: KeywordRules{
			Grievance: CategoryRules{
				StrongPatterns: []string{
					"khiếu nại", "tố cáo", "khiếu kiện", "tố giác", "khiếu tố",
					"yêu cầu giải quyết", "yêu cầu xem xét", "yêu cầu xử lý",
					"không đồng ý", "không chấp nhận", "không thỏa đáng",
					"vi phạm", "trái quy định", "thiệt hại", "sai phạm",
				},
				Keywords: []string{
					"bồi thường", "xử lý trách nhiệm", "kỷ luật", "truy cứu",
					"quyết định", "không hợp lý", "không công bằng", "không đúng",
					"sai quy trình", "trái luật", "không đúng quy định", "khiếu",
					"đền bù", "bất cập", "sai sót", "oan sai",
				},
			},
			Report: CategoryRules{
				StrongPatterns: []string{
					"phản ánh", "kiến nghị", "góp ý", "đề xuất", "báo cáo",
					"thông báo tình trạng", "tình hình", "hiện trạng",
				},
				Keywords: []string{
					"hư hỏng", "xuống cấp", "ô nhiễm", "mất trật tự",
					"mất vệ sinh", "ùn tắc", "ngập nước", "thiếu nước",
					"mất điện", "không an toàn", "gây nguy hiểm",
				},
			},
		},
		Severity: SeverityRules{
			HighPatterns: []string{
				// Life safety / fire
				"cháy", "cháy nhà", "cháy nổ", "hỏa hoạn", "bốc cháy", "nổ",
				"chập điện", "điện giật", "rò rỉ gas", "rò rỉ khí gas", "nổ bình gas",
				"nổ nồi hơi", "nổ đường ống", "cháy rừng", "cháy chợ", "cháy kho",
				"khói dày đặc", "khói mù mịt", "cần cứu hỏa", "xe cứu hỏa",

				// Serious accidents
				"gây chết người", "tử vong", "tai nạn nghiêm trọng", "nguy hiểm đến tính mạng",
				"đe dọa tính mạng", "thương tích nặng", "nhập viện", "cấp cứu",

				// Disasters
				"sập nhà", "sập cầu", "sạt lở", "lũ quét", "ngập lụt nghiêm trọng",
				"bão lớn", "động đất", "lốc xoáy", "giông lốc",

				// Hazardous pollution / chemicals
				"ô nhiễm nghiêm trọng", "độc hại", "nguy hại", "phát tán độc hại",
				"gây bệnh", "dịch bệnh", "nhiễm độc", "rò rỉ hóa chất", "tràn hóa chất",

				// Serious public order
				"ma túy", "vũ khí", "gây rối nghiêm trọng", "băng nhóm", "tội phạm",
				"đe dọa", "hành hung", "bạo lực", "trấn lột", "cướp", "cướp giật",
				"đánh nhau", "ẩu đả", "xô xát", "đâm chém", "đánh hội đồng",

				// Corruption
				"tham nhũng", "tiêu cực", "trục lợi", "biển thủ",

				// Urgent / wide impact
				"khẩn cấp", "cần giải quyết ngay", "nhiều người", "cả khu vực", "toàn xã",
				"cộng đồng", "ảnh hưởng nghiêm trọng", "thiệt hại lớn",
			},
			MediumPatterns: []string{
				// Infrastructure
				"hư hỏng", "xuống cấp", "sửa chữa", "nâng cấp", "ổ gà", "nứt", "lún", "trơn trượt",
				"ngập nước", "cống tắc", "đèn hỏng",

				// Sanitation
				"rác thải", "vệ sinh", "mùi hôi", "nước thải", "đốt rác", "khói",

				// Urban order
				"lấn chiếm", "xây dựng sai phép", "họp chợ tự phát", "đỗ xe sai quy định", "buôn bán lấn chiếm",

				// Public services
				"chậm trễ", "thái độ không tốt", "sai quy trình", "thu phí sai", "hồ sơ ách tắc",

				// Utilities
				"mất điện", "mất nước", "đường sá", "internet chập chờn", "thiếu đèn", "đèn đường",
			},
		},
	}
}

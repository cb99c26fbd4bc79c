package classify

import (
	"regexp"
	"strings"
	"unicode"

	"cardscan/common/utils"
)

// Fields 名片字段
type Fields struct {
	Name        string   `json:"name"`
	Designation string   `json:"designation"`
	Company     string   `json:"company"`
	Phone       []string `json:"phone"`
	Email       []string `json:"email"`
	Website     []string `json:"website"`
	Address     string   `json:"address"`
}

// Empty 返回空字段，列表字段为非 nil 空切片
func Empty() Fields {
	return Fields{
		Phone:   []string{},
		Email:   []string{},
		Website: []string{},
	}
}

// IsEmpty 所有字段均为空
func (f Fields) IsEmpty() bool {
	return f.Name == "" && f.Designation == "" && f.Company == "" && f.Address == "" &&
		len(f.Phone) == 0 && len(f.Email) == 0 && len(f.Website) == 0
}

const (
	phoneExpr   = `(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`
	emailExpr   = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`
	websiteExpr = `(https?://)?([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`
)

var (
	phoneRe   = regexp.MustCompile(phoneExpr)
	emailRe   = regexp.MustCompile(emailExpr)
	websiteRe = regexp.MustCompile(websiteExpr)
	// 去除网址时连同路径、查询参数一起去掉
	websiteFullRe = regexp.MustCompile(websiteExpr + `(?:[/?#]\S*)?`)

	phoneOnlyRe   = regexp.MustCompile(`^` + phoneExpr + `$`)
	emailOnlyRe   = regexp.MustCompile(`^` + emailExpr + `$`)
	websiteOnlyRe = regexp.MustCompile(`^` + websiteExpr + `$`)

	postalCodeRe = regexp.MustCompile(`\d{5}(-\d{4})?`)
	digitRe      = regexp.MustCompile(`\d`)
	labelRe      = regexp.MustCompile(`(?i)\b(phone|tel|mobile|cell|fax|e-mail|email|website|web|www|url)\s*[:：]`)
)

var (
	designationKeywords = []string{
		"manager", "director", "president", "ceo", "cto", "cfo", "vp", "vice president",
		"senior", "junior", "lead", "head", "chief", "coordinator", "specialist",
		"analyst", "engineer", "developer", "designer", "consultant", "advisor",
		"executive", "officer", "associate", "assistant", "supervisor",
	}
	companyKeywords = []string{
		"inc", "llc", "ltd", "corp", "corporation", "company", "co", "enterprises",
		"group", "associates", "partners", "solutions", "systems", "technologies",
		"international", "global", "worldwide", "services", "consulting",
	}
	addressIndicators = []string{
		"street", "avenue", "road", "drive", "lane", "boulevard", "suite", "floor", "building",
	}
	addressAbbreviations = []string{
		"st", "ave", "rd", "dr", "blvd", "ln", "ct", "pl",
	}
	fieldLabels = []string{
		"phone", "tel", "mobile", "cell", "fax", "email", "e-mail", "web", "website", "www", "url",
	}
)

// Classify 将 OCR 文本按行归类为名片字段
func Classify(text string) Fields {
	result := Empty()
	if strings.TrimSpace(text) == "" {
		return result
	}

	var remaining []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		result.Phone = appendMatches(result.Phone, phoneRe, line, 0)
		line = phoneRe.ReplaceAllString(line, " ")

		result.Email = appendMatches(result.Email, emailRe, line, 0)
		line = emailRe.ReplaceAllString(line, " ")

		// 先去掉邮箱再匹配网址，避免把邮箱域名识别为网址
		result.Website = appendMatches(result.Website, websiteRe, line, 2)
		line = websiteFullRe.ReplaceAllString(line, " ")

		if line = cleanLine(line); line != "" {
			remaining = append(remaining, line)
		}
	}

	result.Phone = utils.SliceUnique(result.Phone)
	result.Email = utils.SliceUnique(result.Email)
	result.Website = utils.SliceUnique(result.Website)

	if len(remaining) == 0 {
		return result
	}
	result.Name = remaining[0]

	var designations, companies, addresses []string
	for _, line := range remaining[1:] {
		switch classifyLine(line) {
		case kindDesignation:
			designations = append(designations, line)
		case kindCompany:
			companies = append(companies, line)
		default:
			addresses = append(addresses, line)
		}
	}

	if len(designations) > 0 {
		result.Designation = designations[0]
	}
	if len(companies) > 0 {
		result.Company = companies[0]
	}
	result.Address = strings.Join(addresses, ", ")
	return result
}

type lineKind int

const (
	kindAddress lineKind = iota
	kindDesignation
	kindCompany
)

// classifyLine 按顺序应用规则，先命中者生效
func classifyLine(line string) lineKind {
	tokens := tokenize(line)
	switch {
	case containsAny(tokens, designationKeywords):
		return kindDesignation
	case containsAny(tokens, companyKeywords):
		return kindCompany
	case containsAny(tokens, addressIndicators):
		return kindAddress
	case postalCodeRe.MatchString(line):
		return kindAddress
	case digitRe.MatchString(line) && containsAny(tokens, addressAbbreviations):
		return kindAddress
	case len(strings.Fields(line)) <= 3 && !digitRe.MatchString(line):
		return kindCompany
	default:
		return kindAddress
	}
}

// tokenize 小写并按非字母数字切分
func tokenize(line string) []string {
	return strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsAny 关键词按整词匹配，多词短语按连续词匹配
func containsAny(tokens, keywords []string) bool {
	if len(tokens) == 0 {
		return false
	}
	joined := " " + strings.Join(tokens, " ") + " "
	for _, kw := range keywords {
		if strings.Contains(joined, " "+kw+" ") {
			return true
		}
	}
	return false
}

// cleanLine 去掉字段标签和两端分隔符，只剩标点时返回空
func cleanLine(line string) string {
	line = labelRe.ReplaceAllString(line, " ")
	line = strings.Join(strings.Fields(line), " ")
	line = strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;|/·•:-", r)
	})
	if !strings.ContainsFunc(line, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) {
		return ""
	}
	if isLabel(line) {
		return ""
	}
	return line
}

func isLabel(line string) bool {
	word := strings.ToLower(strings.TrimRight(line, ".:"))
	return utils.SliceContains(fieldLabels, word)
}

func appendMatches(dst []string, re *regexp.Regexp, line string, group int) []string {
	for _, m := range re.FindAllStringSubmatch(line, -1) {
		if v := strings.TrimSpace(m[group]); v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

// ValidatePhone 校验电话号码格式
func ValidatePhone(phone string) bool {
	return phoneOnlyRe.MatchString(strings.TrimSpace(phone))
}

// ValidateEmail 校验邮箱格式
func ValidateEmail(email string) bool {
	return emailOnlyRe.MatchString(strings.TrimSpace(email))
}

// ValidateWebsite 校验网址格式
func ValidateWebsite(website string) bool {
	return websiteOnlyRe.MatchString(strings.TrimSpace(website))
}

// ListSeparator 列表字段的存储分隔符
const ListSeparator = ", "

// JoinList 将列表字段编码为存储字符串
func JoinList(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return strings.Join(out, ListSeparator)
}

// SplitList 解码存储字符串，去除空项
func SplitList(s string) []string {
	items := utils.SplitTrim(s, ",")
	if items == nil {
		return []string{}
	}
	return items
}

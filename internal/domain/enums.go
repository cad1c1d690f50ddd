package domain

// Categories is the closed set of permissible bill categories. A bill whose
// category is not an exact member of this list is rejected.
var Categories = []string{
	"餐饮",
	"购物",
	"交通",
	"住房",
	"休闲娱乐",
	"医疗健康",
	"学习办公",
	"宠物",
	"母婴",
	"资金往来",
	"保险理财",
	"其他支出",
}

// DefaultCategory is substituted when a parser backend omits the category.
const DefaultCategory = "其他支出"

// categorySet mirrors Categories for O(1) membership checks.
var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// ValidCategory reports whether c is in the category whitelist.
func ValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

// NWType is the binary expense classification. The split is a semantic
// judgment made upstream by the parser backend; here it is only an enum.
type NWType string

const (
	NWTypeBasic   NWType = "基础支出"
	NWTypeLeisure NWType = "娱乐支出"
)

// ValidNWType reports whether s is one of the two fixed labels.
func ValidNWType(s string) bool {
	return s == string(NWTypeBasic) || s == string(NWTypeLeisure)
}

// ParseVariant selects which parser backend handles an ingest request.
type ParseVariant string

const (
	VariantQwenVL    ParseVariant = "qwen_vl"    // vision model, image sent directly
	VariantBaiduQwen ParseVariant = "baidu_qwen" // OCR text extraction, then text model
	VariantLLM       ParseVariant = "llm"        // text model on a free-text description
)

package parser

import (
	"fmt"
	"strings"

	"smartledger/internal/domain"
)

// BuildBillPrompt returns the extraction prompt shared by every parser
// variant. All variants must embed the same category whitelist and the same
// two-class nw_type taxonomy, and pin today's date so unstated dates resolve
// consistently.
func BuildBillPrompt(today string) string {
	categories := strings.Join(domain.Categories, "、")
	return fmt.Sprintf(
		"解析账单并只返回 JSON 对象，字段：category、amount、date、description、nw_type。"+
			"category 必须从以下列表中选择：%s；"+
			"amount 为字符串（单位元），保留两位小数且为正；"+
			"date 使用 YYYY-MM-DD 格式，若原文未出现日期则使用今天（%s）；"+
			"description 为简洁自然语言；"+
			"nw_type 为两类：'%s' 与 '%s'，请根据语义自行判断归类"+
			"（例如：住房、交通、医疗、账单水电以及金额较低的正餐等通常为%s；"+
			"相对高价餐饮、零食奶茶以及购物、旅行、娱乐、爱好等通常为%s），不要使用固定映射。"+
			"不要输出 markdown 代码块或任何解释，只输出 JSON 对象本身。",
		categories, today,
		domain.NWTypeBasic, domain.NWTypeLeisure,
		domain.NWTypeBasic, domain.NWTypeLeisure,
	)
}

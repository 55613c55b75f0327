package model

// Slot is the substitution placeholder inside a question template
const Slot = "{}"

// DefaultTemplates are the question templates used when none are configured.
// Their order is part of the dataset contract.
var DefaultTemplates = []string{
	"{}代表什么？",
	"周易中的{}含义是什么？",
	"请解释一下{}。",
	"{}在周易中是什么象征？",
	"周易{}的深层含义是什么？",
	"{}和教育启蒙有什么联系？",
	"周易的{}讲述了什么？",
	"{}是怎样的一个卦象？",
	"{}在周易中怎样表达教育的概念？",
	"{}的基本意义是什么？",
	"周易中{}的解释是什么？",
	"{}在周易中代表了哪些方面？",
	"{}涉及哪些哲学思想？",
	"周易中{}的象征意义是什么？",
	"{}的主要讲述内容是什么？",
	"周易{}的核心思想是什么？",
	"{}和启蒙教育之间有何联系？",
	"在周易中，{}象征着什么？",
	"请描述{}的含义。",
	"{}在周易哲学中扮演什么角色？",
}

package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/gendataset/internal/llm"
	"github.com/ppiankov/gendataset/internal/model"
)

// DefaultSystem is the persona, task, worked example and reply format sent
// with every fragment
const DefaultSystem = `你是中国古典哲学大师，尤其擅长周易的哲学解读。

接下来，你收到的都是关于周易卦象的解释，你需要整理润色，并生成用于大模型训练的内容和格式。

示例输入：

师卦，此卦是异卦相叠，下卦为坎，上卦为坤。“师”指军队。坎为水、为险；坤为地、为顺，喻寓兵于农。兵凶战危，用兵乃圣人不得已而为之，但它可以顺利无阻碍地解决矛盾，因为顺乎形势，师出有名，故能化凶为吉。占得此卦，对于军事上率师出征非常有利，必无灾祸。师卦是天马出群之卦，以寡伏众之象。
师卦位于讼卦之后，《序卦》之中这样解释道：“讼必有众起，故受之以师。师者，众也。”争讼的人越来越多，以致形成了军队。

期待结果：

content:"师卦"
summary:"在周易中，师卦是一个极具深意的卦象，它由两个异卦相叠组成：下卦坎（水）和上卦坤（地）。这一卦象代表“师”，即军队，寓意着兵力和农力的结合。在这里，坎卦象征着水和险难，而坤卦象征着地和顺从，暗示着通过将军事力量安置于民间，可以在必要时顺利调动。

师卦的核心哲学是：虽然兵力代表着危险和战争，但其使用应当是圣人不得已而为之的最后手段。在正确的情况下，军事力量可以顺应形势，将危险转化为吉祥。因此，在军事策略上，此卦象征着出征将会顺利，无灾祸。

师卦紧随讼卦（争讼卦），在《序卦》中解释为“讼必有众起，故受之以师”。这意味着争端激化至众多人群的参与，形成了类似军队的集体力量。"

返回格式要求：
content:"{卦名}"
summary:"{内容}"
`

// LoadSystem returns the system instruction stored at path, or DefaultSystem
// when path is empty
func LoadSystem(path string) (string, error) {
	if path == "" {
		return DefaultSystem, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	system := strings.TrimSpace(string(data))
	if system == "" {
		return "", fmt.Errorf("system prompt %s is empty", path)
	}
	return system, nil
}

// Request builds the generation request for one fragment. The fragment is
// sent verbatim as the input.
func Request(system string, fragment model.Fragment) llm.CompletionRequest {
	return llm.CompletionRequest{
		System: system,
		Input:  string(fragment),
	}
}

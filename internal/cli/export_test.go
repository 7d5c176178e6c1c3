package cli

var (
	SplitLine   = splitLine
	ParseValues = parseValues
)

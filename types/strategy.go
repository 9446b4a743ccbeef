package types

// Strategy is one of the closed set of query transformation strategies the
// router can select for a document request.
type Strategy string

const (
	StrategyDefault       Strategy = "default"
	StrategyMultiQuery    Strategy = "multi_query"
	StrategyRAGFusion     Strategy = "rag_fusion"
	StrategyDecomposition Strategy = "decomposition"
	StrategyStepBack      Strategy = "step_back"
	StrategyHyDE          Strategy = "hyde"
)

// Strategies lists every retrieval strategy the pipeline knows about.
func Strategies() []Strategy {
	return []Strategy{
		StrategyDefault,
		StrategyMultiQuery,
		StrategyRAGFusion,
		StrategyDecomposition,
		StrategyStepBack,
		StrategyHyDE,
	}
}

// Intent is the coarse classification of an incoming question.
type Intent string

const (
	IntentDocumentRequest Intent = "document request"
	IntentGeneralQuery    Intent = "general query"
)

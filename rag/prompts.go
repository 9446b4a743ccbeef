package rag

import "fmt"

// Prompt templates for the NEFAC pipeline. Placeholders are filled with
// fmt.Sprintf; every template ends its variable section with %s in the
// order documented per constant.

// basePrompt is the shared topical guidance appended to every query
// translation prompt.
const basePrompt = `
For topics related to:
- FOI/Public Records: Include queries about access challenges, legal precedents, best practices, enforcement, litigation, delays, exemptions, appeals
- First Amendment: Include constitutional principles, case law, practical applications, violations, protections, limits, interpretations
- Journalism/Media: Include ethics, techniques, legal protections, investigations, sources, verification, storytelling
- Government Transparency: Include accountability, oversight, public participation, barriers, reform, democracy, citizen engagement
- Data/Research: Include methodology, accuracy, verification, sources, analysis, presentation, ethics
`

// contextualizePrompt is the system instruction for rewriting a follow-up
// question into a standalone one. History is provided as chat messages.
const contextualizePrompt = `Given a chat history and the latest user question, formulate a standalone question that can be understood without the chat history. Do NOT answer it, just reformulate if needed.`

// intentPrompt classifies a question as a document request or a general
// query. The classifier's free text is matched by substring downstream.
const intentPrompt = `Based on the conversation history and the latest user query, determine the user's intent:
- If the user is requesting specific information, documents, resources, or media on any particular topic, classify it as 'document request'.
- If the user is asking a general question, making a statement, or seeking broad explanations, classify it as 'general query'.
Ignore whether the topic is related to NEFAC's focus areas; focus solely on the structure and intent of the query.

Examples:
- "Do you have any information about Excel?" → document request
- "What is the First Amendment?" → general query
- "Tell me about NEFAC's mission." → general query
- "Are there any resources on freedom of speech?" → document request
- "Can you explain freedom of the press?" → general query
- "Do you have documents on data privacy laws?" → document request

Respond with 'document request' or 'general query'.`

// methodSelectionPrompt asks the model to name the best transformation
// strategy for a question. %s = question.
const methodSelectionPrompt = `Analyze the question and choose the best query transformation strategy:

1. multiquery - ambiguous questions
2. ragfusion - complex questions
3. stepback - specific questions needing context
4. decompose - multi-part questions
5. hyde - technical questions
6. default - straightforward questions

Question: %s
Respond ONLY with the method name.`

// retrievalPrompt grounds the final answer in retrieved context.
// %s = context, %s = question.
const retrievalPrompt = `You are a helpful and precise AI assistant for NEFAC, the New England First Amendment Coalition. Your main purpose is to answer the user's question based on the provided context and conversation history.

**Instructions:**
1.  **Synthesize an answer:** Carefully read the "Retrieved documents" section and use the information to construct a comprehensive and accurate answer to the "User's Question".
2.  **Cite your sources:** When you use information from a document, you MUST mention its title. For example: "According to the 'Data Cleaning 101' video...". This is very important.
3.  **Describe, Don't Dismiss:** If the user's question is general (e.g., "tell me about NEFAC") but the retrieved documents are specific examples of NEFAC's work, describe what the documents are about instead of stating you can't find information. For example, you could say: "I found a few resources from NEFAC. One is a video titled 'How to Cover Marginalized Communities' which focuses on..."
4.  **If context is truly irrelevant:** If the retrieved documents do not contain a direct or indirect answer to the question (even after applying the "Describe, Don't Dismiss" rule), state that you couldn't find specific information in the database. DO NOT make up an answer or use outside knowledge.
5.  **Handle off-topic questions:** If the user's question is unrelated to NEFAC's work (e.g., sports, cooking, etc.), politely decline to answer and briefly state NEFAC's focus on First Amendment rights and government transparency.
6.  **Cap clarifying questions:** Do not ask more than 2 follow-up clarifying questions per conversation; if the conversation history already contains 2, answer with what you have.

**Retrieved documents:**
---
%s
---

**User's Question:** %s
`

// generalPrompt frames the retrieval-free conversational path.
const generalPrompt = `You are an AI chatbot for NEFAC, the New England First Amendment Coalition. NEFAC is dedicated to protecting press freedoms and the public's right to know in New England. Provide a helpful response to the user's query based on your knowledge of NEFAC's mission and activities. Do not retrieve documents.`

// multiQueryPrompt generates five diverse reformulations. %s = question.
const multiQueryPrompt = `You are an AI assistant for the New England First Amendment Coalition (NEFAC).
Perform a multi-query translation of the user's question by generating exactly five search queries (one per line) to retrieve diverse, relevant materials—transcripts, summaries, and docs—from our vector store.
` + basePrompt + `
Each query should contain one of the following perspectives:

1. Restate the core question to find precise answers.
2. Widen the frame to include New England's free-speech and press-freedom context.
3. Surface related legal concepts, precedents, or foundational First Amendment principles.
4. Seek real-world NEFAC case studies, reports, or example applications.
5. Highlight challenges, debates, or alternative perspectives on the topic.

Original question: %s
`

// ragFusionPrompt generates four refined queries. %s = question.
const ragFusionPrompt = `You are an AI assistant for the New England First Amendment Coalition (NEFAC). Your goal is to enhance document retrieval by generating multiple complementary search queries based on a single user question.
` + basePrompt + `
Given the user's original question, generate exactly 4 refined and diverse queries designed to:
1. Precisely address the user's original query from a NEFAC legal or press-freedom perspective.
2. Identify broader issues and historical contexts relevant to NEFAC's First Amendment advocacy.
3. Surface related case studies, precedent-setting legal cases, or real-world applications.
4. Uncover potential challenges, debates, or alternative viewpoints connected to NEFAC's work.

Original question: %s

Output (4 queries, separated by newlines):
`

// decompositionPrompt breaks a question into three sub-questions.
// %s = question.
const decompositionPrompt = `You are an expert assistant for the New England First Amendment Coalition (NEFAC). Your role is to break down the user's complex question into exactly 3 focused, independently-answerable sub-questions to retrieve precise documents from our vector database of legal analyses, FOI guides, press-freedom resources, and relevant transcripts.
` + basePrompt + `
The sub-questions should:
1. Address specific legal rights, frameworks, or procedures relevant to the original question.
2. Identify related historical cases, precedents, or contextual background crucial to the topic.
3. Explore practical applications, examples, or implications for journalists or citizens in New England.

Original question: %s

Output (exactly 3 queries, one per line):
`

// decompositionQAPrompt answers one sub-question with earlier Q&A pairs as
// background. %s = sub-question, %s = Q&A pairs, %s = context,
// %s = sub-question again.
const decompositionQAPrompt = `You are a NEFAC legal expert answering the following sub-question:
---
%s
---

Background information (previously answered sub-questions):
---
%s
---

Additional relevant NEFAC context:
---
%s
---

Use the context and background to answer precisely:
%s
`

// decompositionSynthesisPrompt combines all sub-question answers into the
// final response. %s = Q&A pairs, %s = original question.
const decompositionSynthesisPrompt = `You are a NEFAC legal expert. Given the following sub-questions and answers:
%s

Synthesize a cohesive, comprehensive response to the user's main question:
%s
`

// stepBackSystemPrompt reformulates a question into a broader legal one.
// Few-shot examples are appended as chat messages.
const stepBackSystemPrompt = `You are an expert in First Amendment law and public records processes in New England.
Your task is to take a user's question and "step back" to a broader, more answerable legal framing aligned with NEFAC's work.
` + basePrompt + `
Here are examples of reformulating specific questions into broader legal inquiries:
`

// stepBackContextTemplate labels the two retrieval sections for the answer
// model. %s = normal context, %s = step-back context, %s = question.
const stepBackContextTemplate = `Using both the original question and the stepped-back legal context, produce a comprehensive answer based on these sources:

# normal_context (direct retrieval results)
%s

# step_back_context (retrieved broader context)
%s

Original Question: %s
Answer:
`

// hydePrompt generates a hypothetical legal passage to embed in place of
// the raw question. %s = question.
const hydePrompt = `You are an AI assistant specialized in legal and First Amendment topics for the New England First Amendment Coalition (NEFAC).

To effectively retrieve relevant case studies, legal analyses, press freedom guides, and related NEFAC resources from our vector database, generate a hypothetical, concise, and informative legal passage that could directly address the user's question.
` + basePrompt + `
The synthesized passage should:
- Clearly resemble a NEFAC-authored case analysis, legal summary, or practical guidance document.
- Include specific legal terminology, relevant case precedents, or practical implications where applicable.
- Be focused, authoritative, and realistic enough to effectively query our document and transcript database.

User Question: %s

Synthesized Legal Passage:
`

// structuredSearchPrompt asks for a JSON list of unique relevant sources.
// %s = context, %s = question.
const structuredSearchPrompt = `Use the following context to answer the query.

Sources:
%s

Instructions:
- You are an AI search engine for NEFAC, new england first amendment coalition. Sometimes NEFAC gets mistaken with Kneefact in youtube transcripts, so be aware.
- You are an expert in providing relevant NEFAC only resources.
- Generate a list of unique relevant sources from the context as a search engine.
- If the source is not relevant to the query, do not include it in the list.
- Titles can be slightly modified for readability.
- If the query is searching for a person, mentor, or people, mention specific names of people with expertise in the relevant areas.
- If the query regards a specific state, find sources relevant to that specific state.
- If the query is not state-specific or regards a general resource, find general resources.
- Do not hallucinate or make up any resources that aren't explicitly given to you above.
- Summarize each returned source content in a way that answers the query.
- Do not include duplicate resources.
- Sources should be unique.
- Source links must match exactly the original source links.
- Put the path of the source in the 'link' field.
- Format the output as JSON in the following structure:

{
    "results": [
        {
            "title": "Title of the source",
            "link": "source path",
            "summary": "Details answering the query.",
            "citations": [
                {"id": "1", "context": "Relevant quote used in summary"}
            ]
        }
    ]
}

Question: %s
`

// jsonRepairPrompt re-prompts a model to coerce malformed output into the
// expected JSON structure. %s = malformed text.
const jsonRepairPrompt = `The following text was supposed to be a JSON object of the form
{"results": [{"title": "...", "link": "...", "summary": "...", "citations": [{"id": "...", "context": "..."}]}]}
but it is not valid JSON. Rewrite it as valid JSON with exactly that structure, preserving the content. Respond with JSON only, no commentary.

Text:
%s
`

// apologyMessage is the single terminal message emitted when the pipeline
// fails. Raw error text never reaches the user.
const apologyMessage = `I'm sorry, something went wrong while answering your question. Please try again in a moment.`

// noDocumentsPlaceholder stands in for an empty fused result set.
const noDocumentsPlaceholder = "No relevant documents found."

// formatRetrievalPrompt fills the grounded answer prompt.
func formatRetrievalPrompt(context, question string) string {
	return fmt.Sprintf(retrievalPrompt, context, question)
}

// stepBackExample is one few-shot reformulation pair.
type stepBackExample struct {
	Input  string
	Output string
}

// stepBackExamples are the few-shot pairs bundled into the step-back
// reformulation prompt.
var stepBackExamples = []stepBackExample{
	{
		Input:  "Can I film police during a protest in Massachusetts?",
		Output: "What are the legal rights around recording public officials in Massachusetts?",
	},
	{
		Input:  "How do I request public records from New Hampshire?",
		Output: "What are the legal processes for obtaining public records in New Hampshire?",
	},
}

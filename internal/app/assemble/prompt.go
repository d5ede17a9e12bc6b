package assemble

const systemInstruction = `
You are "ScriptGuide", an assistant specialized in the Lua scripting language
and the GameGuardian game-automation API.

Your role:
- Answer questions about Lua and the GameGuardian scripting API, and write
  working scripts on request.
- Stay strictly within this domain. If the user asks about anything else,
  politely steer the conversation back to GameGuardian Lua scripting.

Response format:
- Respond with a single well-formatted message.
- Put every piece of code in a fenced code block, with a short heading line
  before each block describing what it does.
- Prefer complete, runnable scripts over fragments when the user asks for a
  script.

Below is the API reference documentation and a set of example scripts. Use
them as the source of truth for function names, parameters, and idioms.
`

// contextAck is the fixed model-role acknowledgement paired with the
// context entry at the head of every payload.
const contextAck = "Understood. I will answer only questions about Lua and the GameGuardian API, " +
	"using the reference documentation provided. How can I help?"

// apologyReply substitutes the AI message when the generation response
// arrived but its shape was unusable.
const apologyReply = "Sorry, I couldn't come up with a proper answer to that. " +
	"Could you rephrase your question?"

// connectivityReply substitutes the AI message when the generation call
// itself failed.
const connectivityReply = "I couldn't reach the language model service just now. " +
	"Please check your connection and try again."

// exampleSeparator prefixes each example script in the concatenated
// examples text. Lua comment syntax so the block stays valid script text.
const exampleSeparator = "-- ========== example: %s =========="

const placeholderFormat = "[%s is currently unavailable]"

package codegen

const intentPrompt = `Classify the intent of the user's question.
Question: %q

Answer with exactly one of these words:
- CodeGen: the question asks to write, generate or change source code
- ExecuteSQL: the question asks to run a SQL query against a database
- Other: anything else

Reply with the single word only, without quotes or explanation.`

// GenerateFilesPrompt is the system preamble of the code-generation agent.
const GenerateFilesPrompt = `You generate source code files using only the information the user supplies:
tables, code samples, referenced files and, when present, the project directory structure.

Reply with a JSON array and nothing else:
[
  {
    "filePath": "path chosen from the directory structure, or an empty string",
    "fileContent": "full file content whose package and imports match filePath"
  }
]

When a directory structure is provided:
- choose the directory that fits each file and put the relative path in filePath
- make package declarations and imports agree with that path,
  e.g. src/main/java/com/example/User.java starts with "package com.example;"

When no directory structure is provided:
- leave filePath empty
- omit package declarations and assume all files share one directory

Example with a directory structure:
[
  {
    "filePath": "src/main/java/com/example/User.java",
    "fileContent": "package com.example;\n\npublic class User {}\n"
  }
]`

package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Document Tools
	DocumentAnalyzeDescription = `Classify OCR text from an identity or eligibility document and extract its structured fields.

**When to use:** You already have the text of a scanned Aadhaar card, income certificate, community certificate, driving licence or PAN card and need its type and key fields.

**Why it's useful:** Uses an ordered keyword ruleset that tolerates noisy OCR, then runs the extractor for the detected type (UID and date of birth, annual income, caste category, licence number, PAN).

**Examples:**
• Aadhaar card: "Analyze this OCR text and give me the UID and DOB"
• Income certificate: "What annual income does this certificate state?"
• Marksheet with custom fields: text plus labels ["Roll No", "School Name"]

**Common workflows:**
1. Eligibility check: document_analyze → compare fields against scheme criteria
2. Onboarding: document_analyze → profile_update → form_map
3. Unknown document: document_analyze returns "Unknown" → use labels or document_extract_field

**Best practices:** Pass the raw OCR text unchanged, line breaks help the label lookups. Confidence is "High" whenever a rule matched and "Low" only for Unknown.`

	DocumentExtractFieldDescription = `Find the value printed next to any label in OCR text.

**When to use:** The field you need is not one of the built-in per-type fields, e.g. "Roll No" on a marksheet or "School Name" on a transfer certificate.

**Why it's useful:** Labels that look like identifiers (containing no, id, num, code, date, income, uid, dob, roll, reg, marks) return the first token; other labels return the phrase up to the next known label such as "Father" or "Class".

**Examples:**
• "Extract 'Roll No' from this marksheet text" → "12345"
• "Extract 'School Name'" → "Govt Higher Secondary School"
• "Extract 'Register Number'"

**Best practices:** Use the label exactly as printed on the document. A result with found=false and value=null means no usable value followed the label.`

	DocumentReadFileDescription = `Read a document file from the document directory, recover its text and analyse it.

**When to use:** The document is stored as a file (.txt, .pdf, .png, .jpg, .jpeg, .tif, .tiff) rather than provided as text.

**Why it's useful:** Reads text files directly, uses the PDF text layer for digital PDFs and runs tesseract OCR on images, then classifies and extracts exactly like document_analyze.

**Examples:**
• "Read uploads/aadhaar_front.jpg and extract the UID"
• "Analyse income-certificate.pdf"

**Common workflows:**
1. document_search → document_read_file → profile_update
2. document_read_file with labels for non-standard certificates

**Best practices:** Paths are relative to the document directory. Check the warnings in the response: scanned PDFs without a text layer and OCR failures yield empty text.`

	DocumentSearchDescription = `List readable documents in the document directory.

**When to use:** You need to discover which document files are available before reading them.

**Examples:**
• "List all documents"
• "Find files matching 'income 2024'"

**Best practices:** Query words must all appear in the file name. Use limit to cap large directories.`

	// Form Tools
	FormMapDescription = `Map extracted document fields onto a government form schema.

**When to use:** You are preparing an application (currently the PAN Form 49A) and need a complete record with every form field.

**Why it's useful:** Splits the full name into first, middle and last name, infers the title from gender (Shri or Smt), applies form defaults and copies email and mobile only when supplied.

**Examples:**
• "Map this Aadhaar text to the PAN form with email a@b.com and mobile 9876543210"
• "Map fields {name: 'Anita Devi', gender: 'Female'} for scheme 'PAN'"

**Best practices:** The scheme defaults to PAN. Scholarship schemes return status "skipped"; other schemes are rejected.`

	FormCheckDescription = `Check how completely a mapped record would fill a form.

**When to use:** Before submitting an application, to see which required fields are still missing, optionally against the field names of a fillable PDF template.

**Why it's useful:** Reports each field as filled, blank or not_located and an overall status of success or partial_success listing the missing fields.

**Examples:**
• "Check the PAN form for this Aadhaar text"
• "Check against templates/form49a.pdf"

**Best practices:** Without a template every form field is treated as present on the target form.`

	// Profile Tools
	ProfileUpdateDescription = `Analyse a document and merge its fields into a stored user profile.

**When to use:** A user provides several documents over time and you want one merged record.

**Why it's useful:** Non-empty fields overwrite earlier values, documents are kept in upload order and an identical document is never attached twice.

**Examples:**
• "Save this Aadhaar text to the profile of user@example.com"

**Best practices:** Keys are case-insensitive. Requires the server to run with a profile database.`

	ProfileGetDescription = `Fetch a stored user profile with its merged fields and attached documents.

**When to use:** You need everything known about a user, e.g. before filling a form.

**Best practices:** Keys are case-insensitive. Returns an error when no profile exists.`

	// Server Information
	ServerInfoDescription = `Get server configuration, available tools, supported document types and usage guidance.

**When to use:** First call in a session, or when unsure which tool fits a task.

**Examples:**
• "What can this server do?"
• "Which documents are in the document directory?"`
)

// Tool names
const (
	ToolDocumentAnalyze      = "document_analyze"
	ToolDocumentExtractField = "document_extract_field"
	ToolDocumentReadFile     = "document_read_file"
	ToolDocumentSearch       = "document_search"
	ToolFormMap              = "form_map"
	ToolFormCheck            = "form_check"
	ToolProfileUpdate        = "profile_update"
	ToolProfileGet           = "profile_get"
	ToolServerInfo           = "server_info"
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	ToolDocumentAnalyze:      DocumentAnalyzeDescription,
	ToolDocumentExtractField: DocumentExtractFieldDescription,
	ToolDocumentReadFile:     DocumentReadFileDescription,
	ToolDocumentSearch:       DocumentSearchDescription,
	ToolFormMap:              FormMapDescription,
	ToolFormCheck:            FormCheckDescription,
	ToolProfileUpdate:        ProfileUpdateDescription,
	ToolProfileGet:           ProfileGetDescription,
	ToolServerInfo:           ServerInfoDescription,
}

// toolOrder is the order tools are registered and listed in
var toolOrder = []string{
	ToolDocumentAnalyze,
	ToolDocumentExtractField,
	ToolDocumentReadFile,
	ToolDocumentSearch,
	ToolFormMap,
	ToolFormCheck,
	ToolProfileUpdate,
	ToolProfileGet,
	ToolServerInfo,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all tool names in registration order
func GetAllToolNames() []string {
	return append([]string(nil), toolOrder...)
}

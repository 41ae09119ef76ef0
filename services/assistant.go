package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"studysync-engine/models"
)

// AddTaskCommand is the structured result of the inline assistant
// directive [ADD_TASK:<text>:<priority>].
type AddTaskCommand struct {
	Text     string
	Priority string
}

// The directive may be embedded anywhere in the reply; the priority
// token is case-insensitive.
var addTaskPattern = regexp.MustCompile(`(?i)\[ADD_TASK:(.*?):(high|medium|low)\]`)

// ParseAddTaskCommand scans free text for an ADD_TASK directive. It
// returns the command (when present) and the text with the directive
// substring removed and trimmed.
func ParseAddTaskCommand(text string) (*AddTaskCommand, string) {
	m := addTaskPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, text
	}
	taskText := text[m[2]:m[3]]
	priority := strings.ToLower(text[m[4]:m[5]])
	remainder := strings.TrimSpace(text[:m[0]] + text[m[1]:])
	return &AddTaskCommand{Text: taskText, Priority: priority}, remainder
}

const chatSystemPrompt = `You are a helpful, motivating study assistant named Struktify AI.
If the user asks to add a task, start your response with the command: [ADD_TASK:task_text:priority].
Priority can be 'high', 'medium', or 'low'. Default to 'medium' if not specified.
Example: User "add study high priority" -> Response "[ADD_TASK:study:high] Added 'study' to your high priority list! 🚀"
Keep normal responses concise (under 50 words) and encouraging. User says: `

// AssistantClient talks to the generative-language API. The engine
// treats it as an opaque text-completion function.
type AssistantClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewAssistantClient(baseURL, apiKey string) *AssistantClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	}
	return &AssistantClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type promptPart struct {
	Text string `json:"text"`
}

type promptContent struct {
	Parts []promptPart `json:"parts"`
}

type generateRequest struct {
	Contents []promptContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content promptContent `json:"content"`
	} `json:"candidates"`
}

// Complete sends a single prompt and returns the model's text reply.
func (c *AssistantClient) Complete(prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []promptContent{{Parts: []promptPart{{Text: prompt}}}},
	}
	jsonData, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s?key=%s", c.BaseURL, c.APIKey)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		log.Printf("Assistant API returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("assistant request failed: %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "I'm thinking...", nil
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// AssistantService bridges chat messages to local task creation.
type AssistantService struct {
	Client *AssistantClient
	Tasks  *TaskService
}

func NewAssistantService(client *AssistantClient, tasks *TaskService) *AssistantService {
	return &AssistantService{Client: client, Tasks: tasks}
}

// ChatReply is what the presentation layer renders.
type ChatReply struct {
	Text      string       `json:"text"`
	AddedTask *models.Task `json:"added_task,omitempty"`
}

// Chat forwards the user's message, parses any embedded ADD_TASK
// directive out of the reply, creates the task locally, and returns the
// reply with the directive stripped. Collaborator failures become a
// user-visible message, never a fault.
func (s *AssistantService) Chat(userID, message string) ChatReply {
	text, err := s.Client.Complete(chatSystemPrompt + message)
	if err != nil {
		return ChatReply{Text: fmt.Sprintf("Connection Error: %v. Please check your internet or API key quota.", err)}
	}

	cmd, remainder := ParseAddTaskCommand(text)
	if cmd == nil {
		return ChatReply{Text: text}
	}

	task, err := s.Tasks.Add(userID, cmd.Text, cmd.Priority, nil)
	if err != nil {
		log.Printf("⚠️ Assistant task add failed for %s: %v", userID, err)
		return ChatReply{Text: remainder}
	}
	return ChatReply{Text: remainder, AddedTask: &task}
}

// ScheduleEntry is one slot of a generated study schedule.
type ScheduleEntry struct {
	Time     string `json:"time"`
	Task     string `json:"task"`
	Type     string `json:"type"` // work or break
	Priority string `json:"priority,omitempty"`
}

// GenerateSchedule asks the model to lay the user's open tasks into the
// given availability window and parses the JSON reply, stripping any
// markdown fences the model wraps it in.
func (s *AssistantService) GenerateSchedule(userID, availability string) ([]ScheduleEntry, error) {
	if availability == "" {
		availability = "today"
	}

	var open []models.Task
	for _, t := range s.Tasks.List(userID) {
		if !t.Completed {
			open = append(open, t)
		}
	}
	tasksJSON, _ := json.Marshal(open)

	prompt := fmt.Sprintf(`Create a study schedule for these tasks: %s.
User availability: %s.
Sort tasks by priority (High > Medium > Low) and deadline.
Fit them into the availability window. Allocate realistic time slots (e.g., 25-45 mins) with 5-10 min breaks.
Return ONLY a valid JSON array with this structure (no markdown, no code blocks):
[
    { "time": "10:00 AM - 10:30 AM", "task": "Task Name", "type": "work", "priority": "high" },
    { "time": "10:30 AM - 10:35 AM", "task": "Break", "type": "break" }
]`, tasksJSON, availability)

	text, err := s.Client.Complete(prompt)
	if err != nil {
		return nil, err
	}

	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var schedule []ScheduleEntry
	if err := json.Unmarshal([]byte(text), &schedule); err != nil {
		return nil, fmt.Errorf("unparseable schedule reply: %w", err)
	}
	return schedule, nil
}

// SuggestResources asks the model for study resources on a subject.
func (s *AssistantService) SuggestResources(subject string) (string, error) {
	prompt := fmt.Sprintf(`Suggest 3-5 high-quality study resources for: %q.
Include a mix of:
1. 📚 Books (Title & Author)
2. 📺 YouTube Channels/Videos
3. 🌐 Websites/Courses
Format as a concise markdown list with emojis.`, subject)
	return s.Client.Complete(prompt)
}

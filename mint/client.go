package mint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrInvalidRecipient — синтаксически невалидный адрес кошелька получателя.
// Проверяется до запуска внешнего минтера, чтобы не жечь внешний вызов.
var ErrInvalidRecipient = errors.New("invalid recipient wallet address")

// Коды ошибок в Outcome.Err. Оба ретраябельны: состояние победителя при
// них не меняется, и попытку можно повторить вручную.
const (
	OutcomeErrTimeout     = "timeout"
	OutcomeErrUnparseable = "unparseable response"
)

// Outcome — типизированный результат обращения к внешнему минтеру.
// Контракт: последняя строка stdout минтера — авторитетный JSON-объект
// {success, tokenId?, signature?, metadataUri?, error?}; всё, что раньше —
// диагностический шум, он игнорируется парсером, но сохраняется в
// Diagnostics для разбора инцидентов.
type Outcome struct {
	Success     bool   `json:"success"`
	TokenID     string `json:"tokenId,omitempty"`
	Signature   string `json:"signature,omitempty"`
	MetadataURI string `json:"metadataUri,omitempty"`
	Err         string `json:"error,omitempty"`

	Diagnostics string `json:"-"`
}

// Minter — абстракция внешнего минтера. Оркестратор не знает, что за
// транспортом: сабпроцесс, RPC или HTTP — лишь бы контракт Outcome держался.
type Minter interface {
	Mint(ctx context.Context, recipient string, doc Metadata, endpoint string) Outcome
}

// ScriptMinter вызывает Node-скрипт Metaplex как отдельный процесс.
// Аргументы позиционные: получатель, имя, описание, картинка,
// JSON-атрибуты, RPC-эндпоинт.
type ScriptMinter struct {
	// Command — интерпретатор, по умолчанию "node". Подменяется в тестах.
	Command     string
	ScriptPath  string
	KeypairPath string
	Timeout     time.Duration
}

func NewScriptMinter(scriptPath, keypairPath string, timeout time.Duration) *ScriptMinter {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ScriptMinter{
		Command:     "node",
		ScriptPath:  scriptPath,
		KeypairPath: keypairPath,
		Timeout:     timeout,
	}
}

func (m *ScriptMinter) Mint(ctx context.Context, recipient string, doc Metadata, endpoint string) Outcome {
	if err := ValidateWalletAddress(recipient); err != nil {
		return Outcome{Success: false, Err: err.Error()}
	}

	attrs, err := json.Marshal(doc.Attributes)
	if err != nil {
		return Outcome{Success: false, Err: "failed to serialize attributes: " + err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	command := m.Command
	if command == "" {
		command = "node"
	}

	cmd := exec.CommandContext(ctx, command, m.ScriptPath,
		recipient, doc.Name, doc.Description, doc.Image, string(attrs), endpoint)
	if m.KeypairPath != "" {
		cmd.Env = append(os.Environ(), "METAPLEX_KEYPAIR_PATH="+m.KeypairPath)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return Outcome{
			Success:     false,
			Err:         OutcomeErrTimeout,
			Diagnostics: combineDiagnostics(stdout.String(), stderr.String()),
		}
	}

	outcome, ok := parseLastLine(stdout.String())
	if !ok {
		// Процесс мог упасть до того, как напечатал итоговую строку.
		diag := combineDiagnostics(stdout.String(), stderr.String())
		if runErr != nil && diag == "" {
			diag = runErr.Error()
		}
		return Outcome{Success: false, Err: OutcomeErrUnparseable, Diagnostics: diag}
	}

	// Успех обязан нести tokenId: пустая строка в nft_token_id прошла бы
	// условный UPDATE, но запись так и не считалась бы заминченной.
	if outcome.Success && outcome.TokenID == "" {
		return Outcome{
			Success:     false,
			Err:         OutcomeErrUnparseable,
			Diagnostics: combineDiagnostics(stdout.String(), stderr.String()),
		}
	}

	if !outcome.Success {
		outcome.Diagnostics = combineDiagnostics(stdout.String(), stderr.String())
		if outcome.Err == "" {
			outcome.Err = "external minter reported failure"
		}
	}
	return outcome
}

// parseLastLine разбирает последнюю непустую строку stdout как Outcome.
func parseLastLine(output string) (Outcome, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return Outcome{}, false
	}

	var outcome Outcome
	if err := json.Unmarshal([]byte(last), &outcome); err != nil {
		return Outcome{}, false
	}
	return outcome, true
}

func combineDiagnostics(stdout, stderr string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(stderr); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateWalletAddress проверяет, что адрес синтаксически похож на
// Solana-кошелёк: base58 без 0/O/I/l, длина 32–44 символа. Существование
// аккаунта в сети не проверяется — это забота самого минтера.
func ValidateWalletAddress(address string) error {
	if len(address) < 32 || len(address) > 44 {
		return ErrInvalidRecipient
	}
	for i := 0; i < len(address); i++ {
		if !strings.ContainsRune(base58Alphabet, rune(address[i])) {
			return ErrInvalidRecipient
		}
	}
	return nil
}

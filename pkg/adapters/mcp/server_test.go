package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/teller"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	eng, err := teller.New()
	require.NoError(t, err)
	return NewServer(eng)
}

func TestChatTool_ContinuesConversation(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{
		SessionID: "mcp-1",
		UserID:    1,
		Message:   "Je veux déposer 300 TND",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IntentDeposit, res.Intent)
	assert.True(t, res.ActionRequired)

	res, err = s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{SessionID: "mcp-1", UserID: 1, Message: "non"})
	require.NoError(t, err)
	assert.False(t, res.ActionRequired)
}

func TestChatTool_Anonymous(t *testing.T) {
	s := newServer(t)
	res, err := s.handleChat(context.Background(), mcp.CallToolRequest{}, ChatArgs{Message: "Bonjour"})
	require.NoError(t, err)
	assert.Equal(t, domain.IntentGreeting, res.Intent)
}

type brokenEngine struct{}

func (brokenEngine) ProcessMessage(context.Context, domain.Message) (domain.TurnResult, error) {
	return teller.TechnicalError(), errors.New("store down")
}

func (brokenEngine) SimulateLoan(context.Context, float64, int) (domain.LoanSimulation, error) {
	return domain.LoanSimulation{}, domain.ErrInvalidDuration
}

func TestChatTool_EngineFailure(t *testing.T) {
	s := NewServer(brokenEngine{})
	_, err := s.handleChat(context.Background(), mcp.CallToolRequest{}, ChatArgs{SessionID: "x", Message: "solde"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestSimulateLoanTool(t *testing.T) {
	s := newServer(t)

	sim, err := s.handleSimulateLoan(context.Background(), mcp.CallToolRequest{}, SimulateLoanArgs{Amount: 50000, Years: 7})
	require.NoError(t, err)
	want, err := domain.SimulateLoan(50000, 7, domain.DefaultAnnualRate)
	require.NoError(t, err)
	assert.Equal(t, want, sim)

	_, err = NewServer(brokenEngine{}).handleSimulateLoan(context.Background(), mcp.CallToolRequest{}, SimulateLoanArgs{Amount: 1000, Years: 40})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestReadJSONResource(t *testing.T) {
	contents, err := readJSONResource("teller://loan-rates", domain.LoanRates)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)

	var rates []domain.LoanRate
	require.NoError(t, json.Unmarshal([]byte(text.Text), &rates))
	assert.Equal(t, domain.LoanRates, rates)
}

func TestNewServer(t *testing.T) {
	s := newServer(t)
	assert.NotNil(t, s.MCPServer())
}

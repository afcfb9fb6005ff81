package adapter

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func positionsTuple(liquidity *big.Int) []interface{} {
	out := make([]interface{}, 12)
	for i := range out {
		out[i] = big.NewInt(0)
	}
	out[0] = big.NewInt(1)
	out[1] = testOwnerAddr
	out[2] = testWETHAddr
	out[3] = testUSDCAddr
	out[positionLiquidityIndex] = liquidity
	return out
}

func TestLiquidityToBurn(t *testing.T) {
	cases := []struct {
		name    string
		current int64
		percent float64
		want    int64
	}{
		{"third", 1000, 33, 330},
		{"full", 1000, 100, 1000},
		{"rounds down", 1001, 33, 330},
		{"fractional percent truncated", 1000, 33.9, 330},
		{"tiny position", 1, 50, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LiquidityToBurn(big.NewInt(tc.current), tc.percent)
			if got.Cmp(big.NewInt(tc.want)) != 0 {
				t.Fatalf("LiquidityToBurn(%d, %v) = %s, want %d", tc.current, tc.percent, got, tc.want)
			}
		})
	}
}

func TestWithdrawRejectsBadPercent(t *testing.T) {
	client := newTestClient(newFakeContract(), newFakeContract(), nil, nil)

	for _, percent := range []float64{0, -5, 100.1, 101} {
		_, err := client.Withdraw(context.Background(), big.NewInt(1), percent)
		if !errors.Is(err, ErrInvalidPercentage) {
			t.Fatalf("percent %v: error = %v, want ErrInvalidPercentage", percent, err)
		}
	}
}

func TestWithdrawNotOwner(t *testing.T) {
	pm := newFakeContract()
	pm.callResults["ownerOf"] = []interface{}{common.HexToAddress("0x0000000000000000000000000000000000000002")}

	client := newTestClient(newFakeContract(), pm, nil, nil)

	_, err := client.Withdraw(context.Background(), big.NewInt(7), 50)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("error = %v, want ErrNotOwner", err)
	}
}

func TestWithdrawAlreadyApproved(t *testing.T) {
	pm := newFakeContract()
	pm.callResults["ownerOf"] = []interface{}{testOwnerAddr}
	pm.callResults["positions"] = positionsTuple(big.NewInt(1000))
	pm.callResults["getApproved"] = []interface{}{testAdapterAddr}
	adapterC := newFakeContract()

	client := newTestClient(adapterC, pm, nil, nil)

	if _, err := client.Withdraw(context.Background(), big.NewInt(7), 33); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	if got := pm.txCount("setApprovalForAll"); got != 0 {
		t.Fatalf("expected no setApprovalForAll, got %d", got)
	}

	tx, ok := adapterC.lastTx("withdrawLiquidity")
	if !ok {
		t.Fatalf("expected a withdrawLiquidity transaction")
	}
	if burn := tx.params[1].(*big.Int); burn.Cmp(big.NewInt(330)) != 0 {
		t.Fatalf("burn = %s, want 330", burn)
	}
	if min0 := tx.params[2].(*big.Int); min0.Sign() != 0 {
		t.Fatalf("amount0Min = %s, want 0", min0)
	}
	if min1 := tx.params[3].(*big.Int); min1.Sign() != 0 {
		t.Fatalf("amount1Min = %s, want 0", min1)
	}
}

func TestWithdrawOperatorApproval(t *testing.T) {
	pm := newFakeContract()
	pm.callResults["ownerOf"] = []interface{}{testOwnerAddr}
	pm.callResults["positions"] = positionsTuple(big.NewInt(1000))
	pm.callResults["getApproved"] = []interface{}{common.Address{}}
	pm.callResults["isApprovedForAll"] = []interface{}{false}
	adapterC := newFakeContract()

	client := newTestClient(adapterC, pm, nil, nil)

	if _, err := client.Withdraw(context.Background(), big.NewInt(7), 100); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	tx, ok := pm.lastTx("setApprovalForAll")
	if !ok {
		t.Fatalf("expected a setApprovalForAll transaction")
	}
	if operator := tx.params[0].(common.Address); operator != testAdapterAddr {
		t.Fatalf("operator = %s, want adapter", operator.Hex())
	}
	if approved := tx.params[1].(bool); !approved {
		t.Fatalf("expected approval flag true")
	}

	wtx, _ := adapterC.lastTx("withdrawLiquidity")
	if burn := wtx.params[1].(*big.Int); burn.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("burn = %s, want full liquidity", burn)
	}
}

func TestWithdrawBlanketApprovalSuffices(t *testing.T) {
	pm := newFakeContract()
	pm.callResults["ownerOf"] = []interface{}{testOwnerAddr}
	pm.callResults["positions"] = positionsTuple(big.NewInt(10))
	pm.callResults["getApproved"] = []interface{}{common.Address{}}
	pm.callResults["isApprovedForAll"] = []interface{}{true}

	client := newTestClient(newFakeContract(), pm, nil, nil)

	if _, err := client.Withdraw(context.Background(), big.NewInt(7), 50); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if got := pm.txCount("setApprovalForAll"); got != 0 {
		t.Fatalf("expected no setApprovalForAll, got %d", got)
	}
}

func TestWithdrawApprovalGrantFails(t *testing.T) {
	pm := newFakeContract()
	pm.callResults["ownerOf"] = []interface{}{testOwnerAddr}
	pm.callResults["positions"] = positionsTuple(big.NewInt(1000))
	pm.callResults["getApproved"] = []interface{}{common.Address{}}
	pm.callResults["isApprovedForAll"] = []interface{}{false}
	pm.transactErrs["setApprovalForAll"] = errors.New("execution reverted")
	adapterC := newFakeContract()

	client := newTestClient(adapterC, pm, nil, nil)

	_, err := client.Withdraw(context.Background(), big.NewInt(7), 100)
	if !errors.Is(err, ErrNotApproved) {
		t.Fatalf("error = %v, want ErrNotApproved", err)
	}
	if got := adapterC.txCount("withdrawLiquidity"); got != 0 {
		t.Fatalf("withdrawal must not be sent without approval, got %d transactions", got)
	}
}

func TestWithdrawNothingToWithdraw(t *testing.T) {
	pm := newFakeContract()
	pm.callResults["ownerOf"] = []interface{}{testOwnerAddr}
	pm.callResults["positions"] = positionsTuple(big.NewInt(0))
	pm.callResults["getApproved"] = []interface{}{testAdapterAddr}

	client := newTestClient(newFakeContract(), pm, nil, revertedWait)

	_, err := client.Withdraw(context.Background(), big.NewInt(7), 100)
	if !errors.Is(err, ErrNothingToWithdraw) {
		t.Fatalf("error = %v, want ErrNothingToWithdraw", err)
	}
}

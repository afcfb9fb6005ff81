package adapter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	testAdapterAddr = common.HexToAddress("0x00000000000000000000000000000000000000AD")
	testPMAddr      = common.HexToAddress("0x00000000000000000000000000000000000000CE")
	testOwnerAddr   = common.HexToAddress("0x0000000000000000000000000000000000000001")
	testWETHAddr    = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	testUSDCAddr    = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
)

type callRecord struct {
	method string
	params []interface{}
}

// fakeContract scripts call results per method and records transactions.
type fakeContract struct {
	callResults  map[string][]interface{}
	callErrs     map[string]error
	transactErrs map[string]error

	calls []callRecord
	txs   []callRecord
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		callResults:  make(map[string][]interface{}),
		callErrs:     make(map[string]error),
		transactErrs: make(map[string]error),
	}
}

func (f *fakeContract) Call(_ *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error {
	f.calls = append(f.calls, callRecord{method: method, params: params})
	if err := f.callErrs[method]; err != nil {
		return err
	}
	values, ok := f.callResults[method]
	if !ok {
		return fmt.Errorf("no scripted result for %s", method)
	}
	*results = append([]interface{}{}, values...)
	return nil
}

func (f *fakeContract) Transact(_ *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	f.txs = append(f.txs, callRecord{method: method, params: params})
	if err := f.transactErrs[method]; err != nil {
		return nil, err
	}
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(f.txs))}), nil
}

func (f *fakeContract) txCount(method string) int {
	count := 0
	for _, tx := range f.txs {
		if tx.method == method {
			count++
		}
	}
	return count
}

func (f *fakeContract) lastTx(method string) (callRecord, bool) {
	for i := len(f.txs) - 1; i >= 0; i-- {
		if f.txs[i].method == method {
			return f.txs[i], true
		}
	}
	return callRecord{}, false
}

func successWait(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(100),
	}, nil
}

func revertedWait(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(100),
	}, nil
}

func newTestClient(adapterC, pm *fakeContract, tokens map[common.Address]*fakeContract, wait waitFunc) *Client {
	if wait == nil {
		wait = successWait
	}
	return &Client{
		adapterAddr: testAdapterAddr,
		pmAddr:      testPMAddr,
		owner:       testOwnerAddr,
		auth:        &bind.TransactOpts{From: testOwnerAddr},
		adapter:     adapterC,
		pm:          pm,
		token: func(addr common.Address) boundContract {
			if token, ok := tokens[addr]; ok {
				return token
			}
			return newFakeContract()
		},
		wait:     wait,
		logger:   zap.NewNop(),
		decimals: newDecimalsCache(),
	}
}

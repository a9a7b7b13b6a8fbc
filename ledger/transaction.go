package ledger

import (
	"fmt"

	"github.com/lunfardo314/easydex/molecule"
	"golang.org/x/crypto/blake2b"
)

// Transaction consumes cells by out points and produces new cells
type Transaction struct {
	Inputs      []OutPoint
	Outputs     []CellOutput
	OutputsData [][]byte
}

// Bytes serializes the transaction as table: inputs (fixvec), outputs, outputs data.
// Missing outputs data is empty
func (tx *Transaction) Bytes() []byte {
	inputs := make([][]byte, len(tx.Inputs))
	for i := range tx.Inputs {
		inputs[i] = tx.Inputs[i].Bytes()
	}
	outputs := make([][]byte, len(tx.Outputs))
	outputsData := make([][]byte, len(tx.Outputs))
	for i := range tx.Outputs {
		outputs[i] = tx.Outputs[i].Bytes()
		outputsData[i] = molecule.PackBytes(tx.outputData(i))
	}
	return molecule.PackTable(
		molecule.PackFixVec(inputs...),
		molecule.PackDynVec(outputs...),
		molecule.PackDynVec(outputsData...),
	)
}

func TransactionFromBytes(data []byte) (*Transaction, error) {
	fields, err := molecule.ParseTable(data, 3)
	if err != nil {
		return nil, fmt.Errorf("transaction: %w", err)
	}
	inputs, err := molecule.ParseFixVec(fields[0], OutPointLength)
	if err != nil {
		return nil, fmt.Errorf("transaction inputs: %w", err)
	}
	outputs, err := molecule.ParseDynVec(fields[1])
	if err != nil {
		return nil, fmt.Errorf("transaction outputs: %w", err)
	}
	outputsData, err := molecule.ParseDynVec(fields[2])
	if err != nil {
		return nil, fmt.Errorf("transaction outputs data: %w", err)
	}
	if len(outputs) != len(outputsData) {
		return nil, fmt.Errorf("transaction: %d outputs, but %d outputs data", len(outputs), len(outputsData))
	}
	ret := &Transaction{
		Inputs:      make([]OutPoint, len(inputs)),
		Outputs:     make([]CellOutput, len(outputs)),
		OutputsData: make([][]byte, len(outputs)),
	}
	for i, in := range inputs {
		if ret.Inputs[i], err = OutPointFromBytes(in); err != nil {
			return nil, err
		}
	}
	for i := range outputs {
		out, err := CellOutputFromBytes(outputs[i])
		if err != nil {
			return nil, fmt.Errorf("output #%d: %w", i, err)
		}
		ret.Outputs[i] = *out
		if ret.OutputsData[i], err = molecule.ParseBytes(outputsData[i]); err != nil {
			return nil, fmt.Errorf("output data #%d: %w", i, err)
		}
	}
	return ret, nil
}

func (tx *Transaction) ID() TransactionID {
	return blake2b.Sum256(tx.Bytes())
}

func (tx *Transaction) outputData(i int) []byte {
	if i < len(tx.OutputsData) {
		return tx.OutputsData[i]
	}
	return nil
}

// OutputCell is the cell the transaction produces at index i
func (tx *Transaction) OutputCell(i int) *Cell {
	return &Cell{Output: tx.Outputs[i], Data: tx.outputData(i)}
}

// OutPoint of the output i once the transaction is added to the ledger
func (tx *Transaction) OutPoint(i int) OutPoint {
	return NewOutPoint(tx.ID(), uint32(i))
}

package txbuilder

import (
	"fmt"

	"github.com/lunfardo314/easydex/dexargs"
	"github.com/lunfardo314/easydex/ledger"
	"github.com/lunfardo314/easydex/lockscript"
)

type (
	// Offer is a cell put on sale: locked by the dex lock with the terms in the args
	Offer struct {
		Funding  []ledger.OutPoint
		Seller   *lockscript.Script
		Terms    *dexargs.Builder
		Capacity uint64
		// asset type and data, nil for plain capacity
		Type *lockscript.Script
		Data []byte
	}

	// TakeOrder pays the seller and moves the asset of the offer to the buyer
	TakeOrder struct {
		Offer   ledger.OutPoint
		Funding []ledger.OutPoint
		Buyer   *lockscript.Script
		// paid to the seller's lock at the index of the offer
		Pay uint64
		// pays to the lock instead of the seller, normally nil
		PayTo *lockscript.Script
		// the cell which carries the asset to the buyer
		AssetCapacity uint64
	}
)

// MakeOfferTransaction puts the dex cell at output #0, change goes back to the seller
func MakeOfferTransaction(reader CellReader, par *Offer) (*ledger.Transaction, error) {
	b := NewTransactionBuilder(reader)
	if err := b.Consume(par.Funding...); err != nil {
		return nil, err
	}
	dexCell := ledger.NewCellOutput(par.Capacity, DexLock(par.Terms.Bytes())).WithType(par.Type)
	b.Produce(dexCell, par.Data)
	if err := b.ProduceChange(par.Seller); err != nil {
		return nil, err
	}
	return b.Transaction(), nil
}

// MakeTakeOrderTransaction consumes the offer as input #0, so payment is output #0
func MakeTakeOrderTransaction(reader CellReader, par *TakeOrder) (*ledger.Transaction, error) {
	b := NewTransactionBuilder(reader)
	if err := b.Consume(par.Offer); err != nil {
		return nil, err
	}
	offer := b.Consumed(0)
	if !IsDexLock(offer.Output.Lock) {
		return nil, fmt.Errorf("%s is not locked by the dex lock", par.Offer)
	}
	args, err := dexargs.Decode(offer.Output.Lock.Args)
	if err != nil {
		return nil, err
	}
	if err = b.Consume(par.Funding...); err != nil {
		return nil, err
	}
	payTo := args.Owner
	if par.PayTo != nil {
		payTo = par.PayTo
	}
	b.Produce(ledger.NewCellOutput(par.Pay, payTo), nil)
	b.Produce(ledger.NewCellOutput(par.AssetCapacity, par.Buyer).WithType(offer.Output.Type), offer.Data)
	if err = b.ProduceChange(par.Buyer); err != nil {
		return nil, err
	}
	return b.Transaction(), nil
}

// MakeCancelTransaction returns the offer to the owner. The owner's own cell must be consumed too
func MakeCancelTransaction(reader CellReader, offer ledger.OutPoint, ownerCells ...ledger.OutPoint) (*ledger.Transaction, error) {
	b := NewTransactionBuilder(reader)
	if err := b.Consume(offer); err != nil {
		return nil, err
	}
	offerCell := b.Consumed(0)
	args, err := dexargs.Decode(offerCell.Output.Lock.Args)
	if err != nil {
		return nil, err
	}
	if err = b.Consume(ownerCells...); err != nil {
		return nil, err
	}
	b.Produce(ledger.NewCellOutput(offerCell.Output.Capacity, args.Owner).WithType(offerCell.Output.Type), offerCell.Data)
	if err = b.ProduceChange(args.Owner); err != nil {
		return nil, err
	}
	return b.Transaction(), nil
}

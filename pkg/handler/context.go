package handler

// DI for all handlers and models alike.

import (
	mydb "github.com/yumyai/mutlookup/pkg/db"
	"github.com/yumyai/mutlookup/pkg/model"
)

type DBContext struct {
	Matrix_DB *mydb.MatrixDB
	Lookup    *model.Lookup
}

func NewDBContext(mdb *mydb.MatrixDB, remap model.RemapRule) *DBContext {
	return &DBContext{
		Matrix_DB: mdb,
		Lookup:    model.NewLookup(mdb, remap),
	}
}

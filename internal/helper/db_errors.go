package helper

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

// IsDuplicateKey - true kalau err berasal dari pelanggaran UNIQUE index MySQL.
// Dipakai saat dua request lolos cek duplikat bersamaan.
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

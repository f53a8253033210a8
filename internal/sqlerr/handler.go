package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/course-referral/internal/errs"
)

// ConvertPgError converts a raw pgconn.PgError into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds codes such as REFERRAL_INVALID from the table
// name and violation type.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(singular(tableName))

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, StringTooLong:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column once it is known.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case StringTooLong:
		return "One or more values are too long"

	default:
		return "An error occurred while processing your request"
	}
}

func singular(name string) string {
	if strings.HasSuffix(name, "s") && len(name) > 1 {
		return name[:len(name)-1]
	}
	return name
}

// getEntityName prefers a *_id column, then the singular table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		return humanizeText(singular(tableName))
	}

	return "record"
}

// humanizeText converts "referrer_name" into "Referrer Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// jsonFieldName converts "referrer_name" into the API field "referrerName".
func jsonFieldName(column string) string {
	parts := strings.Split(strings.ToLower(column), "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// columnFromConstraint recovers the column from Postgres' default
// constraint names: <table>_<column>_<suffix>, or unique_<table>_<column>.
func columnFromConstraint(tableName, constraintName string, suffixes ...string) string {
	if constraintName == "" {
		return ""
	}

	if tableName != "" && strings.HasPrefix(constraintName, "unique_"+tableName+"_") {
		return strings.TrimPrefix(constraintName, "unique_"+tableName+"_")
	}

	name := constraintName
	trimmed := false
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, "_"+suffix) {
			name = strings.TrimSuffix(name, "_"+suffix)
			trimmed = true
			break
		}
	}
	if !trimmed {
		return ""
	}

	if tableName != "" && strings.HasPrefix(name, tableName+"_") {
		return strings.TrimPrefix(name, tableName+"_")
	}

	// Unknown table: assume a single-word table name.
	if idx := strings.Index(name, "_"); idx >= 0 {
		return name[idx+1:]
	}
	return ""
}

// HandleError converts a low-level database error into an application error.
//
//   - *errs.HTTPError is returned unchanged
//   - constraint violations become 400s with a friendly message
//   - no rows becomes a 404
//   - anything else becomes a generic 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		if sqlErr.ColumnName == "" {
			sqlErr.ColumnName = columnFromConstraint(sqlErr.TableName, sqlErr.ConstraintName, "key", "ukey", "check")
		}

		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, false, &errorCode, nil, nil)

		case UniqueViolation:
			if sqlErr.ColumnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(sqlErr.ColumnName))
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		case NotNullViolation, CheckViolation:
			var fieldErrors []errs.FieldError
			if sqlErr.ColumnName != "" {
				message := "is invalid"
				if sqlErr.Code == NotNullViolation {
					message = "is required"
				}
				fieldErrors = []errs.FieldError{{
					Field: jsonFieldName(sqlErr.ColumnName),
					Error: message,
				}}
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case StringTooLong:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		// Repositories may annotate with "table:<name>:" to name the entity.
		errMsg := err.Error()
		tablePrefix := "table:"
		if strings.Contains(errMsg, tablePrefix) {
			table := strings.Split(strings.Split(errMsg, tablePrefix)[1], ":")[0]
			entityName := getEntityName(table, "")
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)

	case errors.Is(err, context.DeadlineExceeded):
		return errs.NewInternalServerError().WithMessage("The request timed out")
	}

	return errs.NewInternalServerError()
}

package models

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

/*
RegisterWithValidator register with the validator this custom validation support

	@param v *validator.Validate - the validator to register against
	@return whether successful
*/
func RegisterWithValidator(v *validator.Validate) error {
	if err := v.RegisterValidation(
		"enc_key_state", validateEncKeyStateType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"etb_kategorie", validateEntryCategoryType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"etb_status", validateEntryStatusType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"audit_event_type", validateAuditEventType,
	); err != nil {
		return err
	}

	return nil
}

func validateEncKeyStateType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch EncryptionKeyStateENUMType(fl.Field().String()) {
	case EncryptionKeyStateActive:
		fallthrough
	case EncryptionKeyStateInactive:
		return true
	}
	return false
}

func validateEntryCategoryType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return EntryCategoryENUMType(fl.Field().String()).IsValid()
}

func validateEntryStatusType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch EntryStatusENUMType(fl.Field().String()) {
	case EntryStatusActive:
		fallthrough
	case EntryStatusSuperseded:
		return true
	}
	return false
}

func validateAuditEventType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch AuditEventTypeENUMType(fl.Field().String()) {
	case AuditEventTypeEntryCreated:
		fallthrough
	case AuditEventTypeEntryUpdated:
		fallthrough
	case AuditEventTypeEntryClosed:
		fallthrough
	case AuditEventTypeEntrySuperseded:
		fallthrough
	case AuditEventTypeAttachmentAdded:
		fallthrough
	case AuditEventTypeNewEncryptionKey:
		return true
	}
	return false
}

// Package models contains the GORM models of the validator registry.
//
// Two schemas hold the same entities: the core schema (core_* tables) and the
// validator manager schema (validator_manager_* tables). Schema describes the
// table names of one of them and is what stores and services are bound to.
package models

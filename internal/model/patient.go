package model

type Patient struct {
	Base
	SerialNumber  string `db:"serial_number" json:"serial_number"`
	Name          string `db:"patient_name" json:"patient_name"`
	Phone         string `db:"phone_number" json:"phone_number"`
	Age           int    `db:"age" json:"age"`
	Sex           string `db:"sex" json:"sex"`
	MaritalStatus string `db:"marital_status" json:"marital_status"`
	Problem       string `db:"problem" json:"problem"`
	TimesOfVisit  int    `db:"times_of_visit" json:"times_of_visit"`
}

type CreatePatientRequest struct {
	SerialNumber  string `json:"serial_number" binding:"required"`
	Name          string `json:"patient_name" binding:"required"`
	Phone         string `json:"phone_number" binding:"required"`
	Age           int    `json:"age" binding:"min=0,max=150"`
	Sex           string `json:"sex" binding:"required"`
	MaritalStatus string `json:"marital_status" binding:"required"`
	Problem       string `json:"problem" binding:"required"`
	TimesOfVisit  int    `json:"times_of_visit" binding:"omitempty,min=1"`
}

type PatientFilters struct {
	SearchTerm string `json:"search_term" form:"search_term"`
}
